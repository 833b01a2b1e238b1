package billrun

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/application/supplementary"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RemoveBillService removes a bill from a bill run and returns its licences to
// supplementary billing
type RemoveBillService struct {
	removalFlagger
}

// NewRemoveBillService creates a new RemoveBillService
func NewRemoveBillService(
	billRunRepo billing.BillRunRepository,
	billRepo billing.BillRepository,
	yearRepo billing.LicenceSupplementaryYearRepository,
	persister supplementary.FlagPersister,
	notifier shared.Notifier,
	logger *zap.Logger,
) *RemoveBillService {
	return &RemoveBillService{removalFlagger{
		billRunRepo: billRunRepo,
		billRepo:    billRepo,
		yearRepo:    yearRepo,
		persister:   persister,
		notifier:    notifier,
		logger:      logger,
	}}
}

// Go removes the bill with its bill licences and transactions
func (s *RemoveBillService) Go(ctx context.Context, billID uuid.UUID) error {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return fmt.Errorf("fetch bill %s: %w", billID, err)
	}

	billRun, err := s.loadEditableBillRun(ctx, bill.BillRunID)
	if err != nil {
		return err
	}

	if err := s.billRepo.DeleteBill(ctx, bill.ID); err != nil {
		return fmt.Errorf("delete bill %s: %w", bill.ID, err)
	}

	if err := s.markEmptyIfNoBills(ctx, billRun); err != nil {
		return err
	}

	s.logger.Info("Bill removed from bill run",
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_run_id", billRun.ID.String()))

	s.flag(ctx, billRun, bill.LicenceIDs())
	return nil
}
