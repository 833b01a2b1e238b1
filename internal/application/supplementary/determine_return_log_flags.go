package supplementary

import (
	"context"
	"fmt"
	"time"

	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
)

// DetermineReturnLogFlagsService works out the flags raised by a return log change
type DetermineReturnLogFlagsService struct {
	returnLogRepo licensing.ReturnLogRepository
	now           func() time.Time
}

// NewDetermineReturnLogFlagsService creates a new DetermineReturnLogFlagsService
func NewDetermineReturnLogFlagsService(returnLogRepo licensing.ReturnLogRepository, now func() time.Time) *DetermineReturnLogFlagsService {
	if now == nil {
		now = time.Now
	}
	return &DetermineReturnLogFlagsService{
		returnLogRepo: returnLogRepo,
		now:           now,
	}
}

// Go returns the flag intent for the return log, or nil when the return starts
// after the current financial year
func (s *DetermineReturnLogFlagsService) Go(ctx context.Context, returnLogID string) (*billing.FlagIntent, error) {
	returnLog, err := s.returnLogRepo.FindWithLicence(ctx, returnLogID)
	if err != nil {
		return nil, fmt.Errorf("fetch return log %s: %w", returnLogID, err)
	}
	if returnLog.Licence == nil {
		return nil, fmt.Errorf("return log %s has no licence", returnLogID)
	}

	if billing.StartsAfterCurrentFinancialYear(returnLog.StartDate, s.now()) {
		return nil, nil
	}

	computed := billing.Flags{
		PreSroc:       returnLog.StartDate.Before(billing.SrocStartDate),
		Sroc:          returnLog.EndDate.After(billing.SrocStartDate) && !returnLog.TwoPartTariff,
		TwoPartTariff: returnLog.TwoPartTariff,
	}

	licence := returnLog.Licence
	endDate := returnLog.EndDate
	return &billing.FlagIntent{
		LicenceID: licence.ID,
		RegionID:  licence.RegionID,
		StartDate: returnLog.StartDate,
		EndDate:   &endDate,
		Flags:     billing.MergeFlags(licence.CurrentFlags(), computed),
	}, nil
}
