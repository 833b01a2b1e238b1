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

// RemoveBillLicenceService removes one licence from a bill and returns it to
// supplementary billing
type RemoveBillLicenceService struct {
	removalFlagger
}

// NewRemoveBillLicenceService creates a new RemoveBillLicenceService
func NewRemoveBillLicenceService(
	billRunRepo billing.BillRunRepository,
	billRepo billing.BillRepository,
	yearRepo billing.LicenceSupplementaryYearRepository,
	persister supplementary.FlagPersister,
	notifier shared.Notifier,
	logger *zap.Logger,
) *RemoveBillLicenceService {
	return &RemoveBillLicenceService{removalFlagger{
		billRunRepo: billRunRepo,
		billRepo:    billRepo,
		yearRepo:    yearRepo,
		persister:   persister,
		notifier:    notifier,
		logger:      logger,
	}}
}

// Go removes the bill licence and its transactions. A bill left without bill
// licences is removed too.
func (s *RemoveBillLicenceService) Go(ctx context.Context, billLicenceID uuid.UUID) error {
	billLicence, err := s.billRepo.FindBillLicenceByID(ctx, billLicenceID)
	if err != nil {
		return fmt.Errorf("fetch bill licence %s: %w", billLicenceID, err)
	}

	bill, err := s.billRepo.FindByID(ctx, billLicence.BillID)
	if err != nil {
		return fmt.Errorf("fetch bill %s: %w", billLicence.BillID, err)
	}

	billRun, err := s.loadEditableBillRun(ctx, bill.BillRunID)
	if err != nil {
		return err
	}

	billRemoved, err := s.billRepo.DeleteBillLicence(ctx, billLicence.ID)
	if err != nil {
		return fmt.Errorf("delete bill licence %s: %w", billLicence.ID, err)
	}

	if billRemoved {
		if err := s.markEmptyIfNoBills(ctx, billRun); err != nil {
			return err
		}
	}

	s.logger.Info("Bill licence removed from bill run",
		zap.String("bill_licence_id", billLicence.ID.String()),
		zap.String("licence_ref", billLicence.LicenceRef),
		zap.Bool("bill_removed", billRemoved))

	s.flag(ctx, billRun, []uuid.UUID{billLicence.LicenceID})
	return nil
}
