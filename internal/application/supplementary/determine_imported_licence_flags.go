package supplementary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
)

// DetermineImportedLicenceFlagsService works out the flags raised when an import
// changes a licence's expired, lapsed or revoked date
type DetermineImportedLicenceFlagsService struct {
	licenceRepo       licensing.LicenceRepository
	chargeVersionRepo licensing.ChargeVersionRepository
	now               func() time.Time
}

// NewDetermineImportedLicenceFlagsService creates a new DetermineImportedLicenceFlagsService
func NewDetermineImportedLicenceFlagsService(
	licenceRepo licensing.LicenceRepository,
	chargeVersionRepo licensing.ChargeVersionRepository,
	now func() time.Time,
) *DetermineImportedLicenceFlagsService {
	if now == nil {
		now = time.Now
	}
	return &DetermineImportedLicenceFlagsService{
		licenceRepo:       licenceRepo,
		chargeVersionRepo: chargeVersionRepo,
		now:               now,
	}
}

// Go returns the flag intent for the imported changes, or nil when none of the
// end dates changed
func (s *DetermineImportedLicenceFlagsService) Go(ctx context.Context, licenceID uuid.UUID, imported licensing.ImportedLicence) (*billing.FlagIntent, error) {
	licence, err := s.licenceRepo.FindByID(ctx, licenceID)
	if err != nil {
		return nil, fmt.Errorf("fetch licence %s: %w", licenceID, err)
	}

	changed := imported.ChangedEndDates(licence)
	if changed == nil {
		return nil, nil
	}
	startDate := *changed

	if billing.StartsAfterCurrentFinancialYear(startDate, s.now()) {
		return nil, nil
	}

	chargeVersions, err := s.chargeVersionRepo.FindByLicence(ctx, licenceID)
	if err != nil {
		return nil, fmt.Errorf("fetch charge versions for licence %s: %w", licenceID, err)
	}

	summary := licensing.SummariseChargeVersions(chargeVersions)
	computed := billing.Flags{
		PreSroc:       startDate.Before(billing.SrocStartDate) && summary.HasAlcs,
		Sroc:          summary.HasSrocStandard,
		TwoPartTariff: summary.HasSrocTwoPartTariff,
	}

	return &billing.FlagIntent{
		LicenceID: licence.ID,
		RegionID:  licence.RegionID,
		StartDate: startDate,
		Flags:     billing.MergeFlags(licence.CurrentFlags(), computed),
	}, nil
}
