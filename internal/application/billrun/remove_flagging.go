package billrun

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/application/supplementary"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// removalFlagger returns removed licences to supplementary billing so the
// next bill run picks them up again
type removalFlagger struct {
	billRunRepo billing.BillRunRepository
	billRepo    billing.BillRepository
	yearRepo    billing.LicenceSupplementaryYearRepository
	persister   supplementary.FlagPersister
	notifier    shared.Notifier
	logger      *zap.Logger
}

func (f *removalFlagger) loadEditableBillRun(ctx context.Context, billRunID uuid.UUID) (*billing.BillRun, error) {
	billRun, err := f.billRunRepo.FindByID(ctx, billRunID)
	if err != nil {
		return nil, fmt.Errorf("fetch bill run %s: %w", billRunID, err)
	}
	if billRun.Status != billing.BillRunStatusReady && billRun.Status != billing.BillRunStatusReview {
		return nil, shared.NewDomainError("INVALID_STATE", "Bills can only be removed from ready or review bill runs")
	}
	return billRun, nil
}

// markEmptyIfNoBills sets the bill run to empty once its last bill is gone
func (f *removalFlagger) markEmptyIfNoBills(ctx context.Context, billRun *billing.BillRun) error {
	count, err := f.billRepo.CountByBillRun(ctx, billRun.ID)
	if err != nil {
		return fmt.Errorf("count bills in bill run %s: %w", billRun.ID, err)
	}
	if count > 0 {
		return nil
	}
	if err := f.billRunRepo.UpdateStatus(ctx, billRun.ID, billing.BillRunStatusEmpty); err != nil {
		return fmt.Errorf("mark bill run %s empty: %w", billRun.ID, err)
	}
	billRun.Status = billing.BillRunStatusEmpty
	return nil
}

// flag re-flags the licences removed from billRun. Failures are reported and
// never returned.
func (f *removalFlagger) flag(ctx context.Context, billRun *billing.BillRun, licenceIDs []uuid.UUID) {
	if len(licenceIDs) == 0 {
		return
	}

	var err error
	if billRun.IsTwoPartTariff() {
		var unassigned int64
		unassigned, err = f.yearRepo.UnassignFromBillRun(ctx, billRun.ID, licenceIDs)
		if err == nil {
			f.logger.Debug("Supplementary years unassigned",
				zap.String("bill_run_id", billRun.ID.String()),
				zap.Int64("count", unassigned))
		}
	} else {
		preSroc := billRun.Scheme == billing.SchemeAlcs
		sroc := billRun.Scheme == billing.SchemeSroc
		for _, licenceID := range licenceIDs {
			err = errors.Join(err, f.persister.Go(ctx, nil, preSroc, sroc, licenceID))
		}
	}

	if err != nil {
		ids := make([]string, len(licenceIDs))
		for i, id := range licenceIDs {
			ids[i] = id.String()
		}
		f.notifier.Omfg("Supplementary billing flag after removal failed", map[string]any{
			"billRunId":  billRun.ID.String(),
			"licenceIds": ids,
		}, err)
	}
}
