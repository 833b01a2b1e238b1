package billing

import (
	"github.com/google/uuid"

	"github.com/wrls/backend/internal/domain/shared"
)

// LicenceSupplementaryYear marks a financial year a licence must be reconsidered
// in. BillRunID stays nil until a bill run claims the year.
type LicenceSupplementaryYear struct {
	shared.BaseEntity
	LicenceID        uuid.UUID
	BillRunID        *uuid.UUID
	FinancialYearEnd int
	TwoPartTariff    bool
}

// NewLicenceSupplementaryYear creates an unclaimed supplementary year
func NewLicenceSupplementaryYear(licenceID uuid.UUID, financialYearEnd int, twoPartTariff bool) *LicenceSupplementaryYear {
	return &LicenceSupplementaryYear{
		BaseEntity:       shared.NewBaseEntity(),
		LicenceID:        licenceID,
		FinancialYearEnd: financialYearEnd,
		TwoPartTariff:    twoPartTariff,
	}
}

// IsClaimed returns true once a bill run has picked up the year
func (y *LicenceSupplementaryYear) IsClaimed() bool {
	return y.BillRunID != nil
}
