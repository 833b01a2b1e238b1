package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/shared"
)

// BillRun is a generated set of bills for a region and financial year
type BillRun struct {
	shared.BaseEntity
	RegionID                uuid.UUID
	Scheme                  Scheme
	BatchType               BatchType
	Status                  BillRunStatus
	FromFinancialYearEnding int
	ToFinancialYearEnding   int
	// RunReference correlates the run with the logs of the process that created it
	RunReference string
}

// NewSupplementaryBillRun creates an SROC supplementary bill run in processing
// state for the given region and financial year
func NewSupplementaryBillRun(regionID uuid.UUID, financialYearEnding int, runReference string) (*BillRun, error) {
	if regionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REGION", "Region ID cannot be empty")
	}
	if financialYearEnding < FirstSrocFinancialYearEnding {
		return nil, shared.NewDomainError("INVALID_FINANCIAL_YEAR", "SROC bill runs cannot be created before the first SROC financial year")
	}

	return &BillRun{
		BaseEntity:              shared.NewBaseEntity(),
		RegionID:                regionID,
		Scheme:                  SchemeSroc,
		BatchType:               BatchTypeSupplementary,
		Status:                  BillRunStatusProcessing,
		FromFinancialYearEnding: financialYearEnding,
		ToFinancialYearEnding:   financialYearEnding,
		RunReference:            runReference,
	}, nil
}

// IsTwoPartTariff returns true for two-part tariff bill runs
func (r *BillRun) IsTwoPartTariff() bool {
	return r.BatchType == BatchTypeTwoPartTariff
}

// MarkReady moves a processing bill run to ready
func (r *BillRun) MarkReady() error {
	return r.transition(BillRunStatusReady)
}

// MarkEmpty records that the bill run generated no bills
func (r *BillRun) MarkEmpty() error {
	return r.transition(BillRunStatusEmpty)
}

// MarkError records that generating the bill run failed
func (r *BillRun) MarkError() error {
	return r.transition(BillRunStatusError)
}

func (r *BillRun) transition(to BillRunStatus) error {
	if r.Status != BillRunStatusProcessing && r.Status != BillRunStatusQueued {
		return shared.NewDomainError("INVALID_STATE", "Bill run is not being processed")
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

// ExistingBillRunFilter selects bill runs that mean a year has already been billed
type ExistingBillRunFilter struct {
	RegionID                 uuid.UUID
	Scheme                   Scheme
	Statuses                 []BillRunStatus
	BatchTypes               []BatchType
	MinToFinancialYearEnding int
}

// NewExistingBillRunFilter builds the filter used to reconcile flagged years
// against bill runs already generated for the region
func NewExistingBillRunFilter(regionID uuid.UUID, minYear int, twoPartTariff bool) ExistingBillRunFilter {
	return ExistingBillRunFilter{
		RegionID:                 regionID,
		Scheme:                   SchemeSroc,
		Statuses:                 SupplementaryRelevantStatuses,
		BatchTypes:               ExistingBillRunBatchTypes(twoPartTariff),
		MinToFinancialYearEnding: minYear,
	}
}
