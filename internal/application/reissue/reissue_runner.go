package reissue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BillReissuer reissues bills into a bill run
type BillReissuer interface {
	Go(ctx context.Context, billRun *billing.BillRun) (bool, error)
}

// RunnerConfig contains configuration for ReissueRunner
type RunnerConfig struct {
	LockTTL time.Duration
}

// DefaultRunnerConfig returns default configuration
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		LockTTL: 10 * time.Minute,
	}
}

// ReissueRunner creates a supplementary bill run per region and reissues the
// region's flagged bills into it
type ReissueRunner struct {
	billRepo    billing.BillRepository
	billRunRepo billing.BillRunRepository
	reissuer    BillReissuer
	locker      shared.Locker
	logger      *zap.Logger
	lockTTL     time.Duration
	now         func() time.Time
}

// NewReissueRunner creates a new ReissueRunner
func NewReissueRunner(
	billRepo billing.BillRepository,
	billRunRepo billing.BillRunRepository,
	reissuer BillReissuer,
	locker shared.Locker,
	logger *zap.Logger,
	config RunnerConfig,
) *ReissueRunner {
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultRunnerConfig().LockTTL
	}

	return &ReissueRunner{
		billRepo:    billRepo,
		billRunRepo: billRunRepo,
		reissuer:    reissuer,
		locker:      locker,
		logger:      logger,
		lockTTL:     config.LockTTL,
		now:         time.Now,
	}
}

// RunAll reissues bills for every region that has flagged bills. A failing
// region does not stop the others; the number of failed regions is returned
// in the error.
func (r *ReissueRunner) RunAll(ctx context.Context) error {
	regions, err := r.billRepo.FindRegionsWithFlaggedBills(ctx)
	if err != nil {
		return fmt.Errorf("find regions with flagged bills: %w", err)
	}

	r.logger.Info("Starting bill reissue", zap.Int("regions", len(regions)))

	failed := 0
	for _, regionID := range regions {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := r.RunRegion(ctx, regionID); err != nil {
			if errors.Is(err, shared.ErrLocked) {
				r.logger.Info("Reissue already running for region", zap.String("region_id", regionID.String()))
				continue
			}
			failed++
			r.logger.Error("Failed to reissue bills for region",
				zap.String("region_id", regionID.String()),
				zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("reissue failed for %d of %d regions", failed, len(regions))
	}
	return nil
}

// RunRegion reissues the flagged bills of one region. When the region has
// no flagged bills nothing is created and a nil bill run is returned.
// Otherwise the returned bill run is ready when bills were reissued, empty
// when none were and error when reissuing failed.
func (r *ReissueRunner) RunRegion(ctx context.Context, regionID uuid.UUID) (*billing.BillRun, error) {
	lock, err := r.locker.Obtain(ctx, lockKey(regionID), r.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("Failed to release reissue lock", zap.String("region_id", regionID.String()), zap.Error(err))
		}
	}()

	flagged, err := r.billRepo.CountFlaggedForRebilling(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("count flagged bills: %w", err)
	}
	if flagged == 0 {
		r.logger.Info("No bills to reissue", zap.String("region_id", regionID.String()))
		return nil, nil
	}

	runReference := ulid.Make().String()
	billRun, err := billing.NewSupplementaryBillRun(regionID, billing.FinancialYearEnding(r.now()), runReference)
	if err != nil {
		return nil, err
	}

	if err := r.billRunRepo.Create(ctx, billRun); err != nil {
		return nil, fmt.Errorf("create reissue bill run: %w", err)
	}

	logger := r.logger.With(
		zap.String("region_id", regionID.String()),
		zap.String("bill_run_id", billRun.ID.String()),
		zap.String("run_reference", runReference))

	reissued, reissueErr := r.reissuer.Go(ctx, billRun)

	var markErr error
	switch {
	case reissueErr != nil:
		markErr = billRun.MarkError()
	case reissued:
		markErr = billRun.MarkReady()
	default:
		markErr = billRun.MarkEmpty()
	}
	if markErr != nil {
		logger.Error("Could not record reissue outcome",
			zap.String("status", billRun.Status.String()),
			zap.NamedError("reissue_error", reissueErr),
			zap.Error(markErr))
		return billRun, errors.Join(reissueErr, fmt.Errorf("record reissue outcome: %w", markErr))
	}

	if err := r.billRunRepo.UpdateStatus(context.WithoutCancel(ctx), billRun.ID, billRun.Status); err != nil {
		return billRun, errors.Join(reissueErr, fmt.Errorf("update reissue bill run status: %w", err))
	}

	if reissueErr != nil {
		logger.Error("Bill reissue failed", zap.Error(reissueErr))
		return billRun, reissueErr
	}

	logger.Info("Bill reissue finished", zap.String("status", billRun.Status.String()))
	return billRun, nil
}

func lockKey(regionID uuid.UUID) string {
	return "reissue:" + regionID.String()
}
