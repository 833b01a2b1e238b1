package licensing

import "github.com/google/uuid"

// WorkflowStatus is the review state of a licence in the charge workflow
type WorkflowStatus string

const (
	WorkflowStatusToSetup          WorkflowStatus = "to_setup"
	WorkflowStatusReview           WorkflowStatus = "review"
	WorkflowStatusChangesRequested WorkflowStatus = "changes_requested"
)

// Workflow is a licence waiting for its charge information to be set up or reviewed
type Workflow struct {
	ID        uuid.UUID
	LicenceID uuid.UUID
	Status    WorkflowStatus
	Licence   *Licence
	// ChargeVersions are the licence's charge versions
	ChargeVersions []ChargeVersion
}
