package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/application/supplementary"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
)

// ImportedLicenceRequest carries the end dates of a re-imported licence
type ImportedLicenceRequest struct {
	ExpiredDate *time.Time `json:"expired_date"`
	LapsedDate  *time.Time `json:"lapsed_date"`
	RevokedDate *time.Time `json:"revoked_date"`
}

// FlagRequest asks for a licence change to be flagged for supplementary
// billing. At least one trigger must be named.
type FlagRequest struct {
	LicenceID       *uuid.UUID              `json:"licence_id" binding:"required_with=ImportedLicence"`
	ImportedLicence *ImportedLicenceRequest `json:"imported_licence"`
	ChargeVersionID *uuid.UUID              `json:"charge_version_id" binding:"required_without_all=ImportedLicence ReturnLogID WorkflowID"`
	ReturnLogID     string                  `json:"return_log_id" binding:"omitempty,max=255"`
	WorkflowID      *uuid.UUID              `json:"workflow_id"`
}

// ToPayload converts the request to a flag payload
func (r FlagRequest) ToPayload() supplementary.Payload {
	payload := supplementary.Payload{
		LicenceID:       r.LicenceID,
		ChargeVersionID: r.ChargeVersionID,
		ReturnLogID:     r.ReturnLogID,
		WorkflowID:      r.WorkflowID,
	}
	if r.ImportedLicence != nil {
		payload.ImportedLicence = &licensing.ImportedLicence{
			ExpiredDate: r.ImportedLicence.ExpiredDate,
			LapsedDate:  r.ImportedLicence.LapsedDate,
			RevokedDate: r.ImportedLicence.RevokedDate,
		}
	}
	return payload
}

// FlagAcceptedResponse acknowledges a queued flag request
type FlagAcceptedResponse struct {
	EventID uuid.UUID `json:"event_id"`
	Trigger string    `json:"trigger"`
}

// BillRunResponse describes a bill run
type BillRunResponse struct {
	ID                  uuid.UUID `json:"id"`
	RegionID            uuid.UUID `json:"region_id"`
	Scheme              string    `json:"scheme"`
	BatchType           string    `json:"batch_type"`
	Status              string    `json:"status"`
	FinancialYearEnding int       `json:"financial_year_ending"`
	RunReference        string    `json:"run_reference"`
}

// NewBillRunResponse creates a BillRunResponse from a bill run
func NewBillRunResponse(r *billing.BillRun) BillRunResponse {
	return BillRunResponse{
		ID:                  r.ID,
		RegionID:            r.RegionID,
		Scheme:              string(r.Scheme),
		BatchType:           string(r.BatchType),
		Status:              string(r.Status),
		FinancialYearEnding: r.ToFinancialYearEnding,
		RunReference:        r.RunReference,
	}
}
