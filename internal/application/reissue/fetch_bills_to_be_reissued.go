package reissue

import (
	"context"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
)

// FetchBillsToBeReissuedService finds the bills waiting to be reissued in a region
type FetchBillsToBeReissuedService struct {
	billRepo billing.BillRepository
	notifier shared.Notifier
}

// NewFetchBillsToBeReissuedService creates a new FetchBillsToBeReissuedService
func NewFetchBillsToBeReissuedService(billRepo billing.BillRepository, notifier shared.Notifier) *FetchBillsToBeReissuedService {
	return &FetchBillsToBeReissuedService{
		billRepo: billRepo,
		notifier: notifier,
	}
}

// Go returns the region's SROC bills flagged for rebilling with their bill
// licences and transactions. A failed fetch is reported and treated as nothing
// to reissue.
func (s *FetchBillsToBeReissuedService) Go(ctx context.Context, regionID uuid.UUID) []*billing.Bill {
	bills, err := s.billRepo.FindFlaggedForRebilling(ctx, regionID)
	if err != nil {
		s.notifier.Omfg("Could not fetch reissue bills", map[string]any{"regionId": regionID.String()}, err)
		return []*billing.Bill{}
	}
	return bills
}
