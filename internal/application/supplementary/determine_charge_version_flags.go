package supplementary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
)

// DetermineChargeVersionFlagsService works out the flags raised by a charge version change
type DetermineChargeVersionFlagsService struct {
	chargeVersionRepo licensing.ChargeVersionRepository
	now               func() time.Time
}

// NewDetermineChargeVersionFlagsService creates a new DetermineChargeVersionFlagsService
func NewDetermineChargeVersionFlagsService(chargeVersionRepo licensing.ChargeVersionRepository, now func() time.Time) *DetermineChargeVersionFlagsService {
	if now == nil {
		now = time.Now
	}
	return &DetermineChargeVersionFlagsService{
		chargeVersionRepo: chargeVersionRepo,
		now:               now,
	}
}

// Go returns the flag intent for the charge version, or nil when the change
// starts after the current financial year
func (s *DetermineChargeVersionFlagsService) Go(ctx context.Context, chargeVersionID uuid.UUID) (*billing.FlagIntent, error) {
	chargeVersion, err := s.chargeVersionRepo.FindWithLicenceAndReferences(ctx, chargeVersionID)
	if err != nil {
		return nil, fmt.Errorf("fetch charge version %s: %w", chargeVersionID, err)
	}
	if chargeVersion.Licence == nil {
		return nil, fmt.Errorf("charge version %s has no licence", chargeVersionID)
	}

	if billing.StartsAfterCurrentFinancialYear(chargeVersion.StartDate, s.now()) {
		return nil, nil
	}

	var computed billing.Flags
	if chargeVersion.Scheme == billing.SchemeAlcs {
		computed.PreSroc = true
	} else {
		twoPartTariff := chargeVersion.HasTwoPartTariff()
		computed.Sroc = !twoPartTariff
		computed.TwoPartTariff = twoPartTariff
	}

	licence := chargeVersion.Licence
	return &billing.FlagIntent{
		LicenceID: licence.ID,
		RegionID:  licence.RegionID,
		StartDate: chargeVersion.StartDate,
		EndDate:   chargeVersion.EndDate,
		Flags:     billing.MergeFlags(licence.CurrentFlags(), computed),
	}, nil
}
