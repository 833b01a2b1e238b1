package billing

import (
	"context"

	"github.com/google/uuid"
)

// BillRunRepository defines the interface for bill run persistence
type BillRunRepository interface {
	// FindByID finds a bill run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BillRun, error)

	// FindExistingYears returns the distinct to-financial-year-endings of bill
	// runs matching the filter, ascending
	FindExistingYears(ctx context.Context, filter ExistingBillRunFilter) ([]int, error)

	// Create persists a new bill run
	Create(ctx context.Context, billRun *BillRun) error

	// UpdateStatus sets the status of a bill run
	UpdateStatus(ctx context.Context, id uuid.UUID, status BillRunStatus) error
}

// LicenceSupplementaryYearRepository defines the interface for licence
// supplementary year persistence
type LicenceSupplementaryYearRepository interface {
	// FindUnclaimedYears returns which of years already have an unclaimed row
	// for the licence
	FindUnclaimedYears(ctx context.Context, licenceID uuid.UUID, years []int, twoPartTariff bool) ([]int, error)

	// CreateBatch persists new supplementary years
	CreateBatch(ctx context.Context, years []*LicenceSupplementaryYear) error

	// UnassignFromBillRun clears the bill run of the years it claimed for the
	// given licences, making them eligible again
	UnassignFromBillRun(ctx context.Context, billRunID uuid.UUID, licenceIDs []uuid.UUID) (int64, error)
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByID finds a bill with its bill licences
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindBillLicenceByID finds a bill licence
	FindBillLicenceByID(ctx context.Context, id uuid.UUID) (*BillLicence, error)

	// FindFlaggedForRebilling returns the SROC bills in the region flagged for
	// rebilling, with bill licences and transactions loaded
	FindFlaggedForRebilling(ctx context.Context, regionID uuid.UUID) ([]*Bill, error)

	// FindRegionsWithFlaggedBills returns the regions that have SROC bills
	// flagged for rebilling
	FindRegionsWithFlaggedBills(ctx context.Context) ([]uuid.UUID, error)

	// CountFlaggedForRebilling returns the number of SROC bills in the region
	// flagged for rebilling
	CountFlaggedForRebilling(ctx context.Context, regionID uuid.UUID) (int64, error)

	// SaveReissue persists every generated bill and source update in one transaction
	SaveReissue(ctx context.Context, sets []*ReissueSet) error

	// DeleteBill removes a bill with its bill licences and transactions
	DeleteBill(ctx context.Context, id uuid.UUID) error

	// DeleteBillLicence removes a bill licence with its transactions. The parent
	// bill is removed too when it has no bill licences left; the returned bool
	// reports whether that happened.
	DeleteBillLicence(ctx context.Context, id uuid.UUID) (bool, error)

	// CountByBillRun returns the number of bills in a bill run
	CountByBillRun(ctx context.Context, billRunID uuid.UUID) (int64, error)
}
