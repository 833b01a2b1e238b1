package reissue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
)

// BillsToBeReissuedFetcher finds the bills to reissue in a region
type BillsToBeReissuedFetcher interface {
	Go(ctx context.Context, regionID uuid.UUID) []*billing.Bill
}

// ReissueBillsService reissues every flagged bill of a region into a bill run
type ReissueBillsService struct {
	fetcher  BillsToBeReissuedFetcher
	billRepo billing.BillRepository
	notifier shared.Notifier
}

// NewReissueBillsService creates a new ReissueBillsService
func NewReissueBillsService(fetcher BillsToBeReissuedFetcher, billRepo billing.BillRepository, notifier shared.Notifier) *ReissueBillsService {
	return &ReissueBillsService{
		fetcher:  fetcher,
		billRepo: billRepo,
		notifier: notifier,
	}
}

// Go reissues the flagged bills of the bill run's region into the bill run.
// It returns false, writing nothing, when there is nothing to reissue. All
// generated rows and source updates are written in one transaction.
func (s *ReissueBillsService) Go(ctx context.Context, billRun *billing.BillRun) (bool, error) {
	sourceBills := s.fetcher.Go(ctx, billRun.RegionID)
	if len(sourceBills) == 0 {
		return false, nil
	}

	sets := make([]*billing.ReissueSet, 0, len(sourceBills))
	transactions := 0
	for _, source := range sourceBills {
		set, err := billing.ReissueBill(source, billRun)
		if err != nil {
			return false, fmt.Errorf("reissue bill %s: %w", source.ID, err)
		}
		transactions += set.Reversal.TransactionCount() + set.Rebill.TransactionCount()
		sets = append(sets, set)
	}

	if err := s.billRepo.SaveReissue(ctx, sets); err != nil {
		return false, fmt.Errorf("save reissued bills for bill run %s: %w", billRun.ID, err)
	}

	s.notifier.Omg("Reissue bills complete", map[string]any{
		"billRunId":    billRun.ID.String(),
		"billsCount":   len(sets),
		"transactions": transactions,
	})
	return true, nil
}
