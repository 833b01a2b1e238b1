package supplementary

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
)

// DetermineExistingBillRunYearsService narrows candidate years to those that
// already have a bill run in the region. A year with no bill run yet will pick
// the change up when its first bill run is created.
type DetermineExistingBillRunYearsService struct {
	billRunRepo billing.BillRunRepository
}

// NewDetermineExistingBillRunYearsService creates a new DetermineExistingBillRunYearsService
func NewDetermineExistingBillRunYearsService(billRunRepo billing.BillRunRepository) *DetermineExistingBillRunYearsService {
	return &DetermineExistingBillRunYearsService{billRunRepo: billRunRepo}
}

// Go returns the distinct candidate years, ascending, that have a sent, ready
// or review SROC bill run of a batch type that counts
func (s *DetermineExistingBillRunYearsService) Go(ctx context.Context, regionID uuid.UUID, years []int, twoPartTariff bool) ([]int, error) {
	if len(years) == 0 {
		return nil, nil
	}

	filter := billing.NewExistingBillRunFilter(regionID, slices.Min(years), twoPartTariff)
	existing, err := s.billRunRepo.FindExistingYears(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find existing bill run years for region %s: %w", regionID, err)
	}

	billed := make(map[int]struct{}, len(existing))
	for _, year := range existing {
		billed[year] = struct{}{}
	}

	var result []int
	for _, year := range years {
		if _, ok := billed[year]; ok && !slices.Contains(result, year) {
			result = append(result, year)
		}
	}
	slices.Sort(result)
	return result, nil
}
