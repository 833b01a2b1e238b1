package supplementary

import (
	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/licensing"
)

// Payload names the change that may need supplementary billing. Exactly one
// trigger is taken from it, in this priority order: imported licence (with
// licence ID), charge version, return log, workflow.
type Payload struct {
	ImportedLicence *licensing.ImportedLicence `json:"importedLicence,omitempty"`
	LicenceID       *uuid.UUID                 `json:"licenceId,omitempty"`
	ChargeVersionID *uuid.UUID                 `json:"chargeVersionId,omitempty"`
	ReturnLogID     string                     `json:"returnLogId,omitempty"`
	WorkflowID      *uuid.UUID                 `json:"workflowId,omitempty"`
}

// Trigger is one of ImportedLicenceTrigger, ChargeVersionTrigger,
// ReturnLogTrigger or WorkflowTrigger
type Trigger interface {
	// Kind names the trigger for logs and metrics
	Kind() string
	isTrigger()
}

// ImportedLicenceTrigger is a licence whose end dates were re-imported
type ImportedLicenceTrigger struct {
	LicenceID       uuid.UUID
	ImportedLicence licensing.ImportedLicence
}

// ChargeVersionTrigger is a created or edited charge version
type ChargeVersionTrigger struct {
	ChargeVersionID uuid.UUID
}

// ReturnLogTrigger is an edited return log
type ReturnLogTrigger struct {
	ReturnLogID string
}

// WorkflowTrigger is a licence added to or removed from the workflow
type WorkflowTrigger struct {
	WorkflowID uuid.UUID
}

func (ImportedLicenceTrigger) Kind() string { return "imported_licence" }
func (ChargeVersionTrigger) Kind() string   { return "charge_version" }
func (ReturnLogTrigger) Kind() string       { return "return_log" }
func (WorkflowTrigger) Kind() string        { return "workflow" }

func (ImportedLicenceTrigger) isTrigger() {}
func (ChargeVersionTrigger) isTrigger()   {}
func (ReturnLogTrigger) isTrigger()       {}
func (WorkflowTrigger) isTrigger()        {}

// TriggerFromPayload picks the trigger a payload names. It returns nil when the
// payload names none.
func TriggerFromPayload(p Payload) Trigger {
	switch {
	case p.ImportedLicence != nil && p.LicenceID != nil:
		return ImportedLicenceTrigger{LicenceID: *p.LicenceID, ImportedLicence: *p.ImportedLicence}
	case p.ChargeVersionID != nil:
		return ChargeVersionTrigger{ChargeVersionID: *p.ChargeVersionID}
	case p.ReturnLogID != "":
		return ReturnLogTrigger{ReturnLogID: p.ReturnLogID}
	case p.WorkflowID != nil:
		return WorkflowTrigger{WorkflowID: *p.WorkflowID}
	}
	return nil
}
