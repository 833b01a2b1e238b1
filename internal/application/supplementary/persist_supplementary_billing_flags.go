package supplementary

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
	"go.uber.org/zap"
)

// PersistSupplementaryBillingFlagsService writes supplementary flags without
// ever clearing one
type PersistSupplementaryBillingFlagsService struct {
	licenceRepo licensing.LicenceRepository
	yearRepo    billing.LicenceSupplementaryYearRepository
	logger      *zap.Logger
}

// NewPersistSupplementaryBillingFlagsService creates a new PersistSupplementaryBillingFlagsService
func NewPersistSupplementaryBillingFlagsService(
	licenceRepo licensing.LicenceRepository,
	yearRepo billing.LicenceSupplementaryYearRepository,
	logger *zap.Logger,
) *PersistSupplementaryBillingFlagsService {
	return &PersistSupplementaryBillingFlagsService{
		licenceRepo: licenceRepo,
		yearRepo:    yearRepo,
		logger:      logger,
	}
}

// Go records the two-part tariff years for the licence and raises the pre-SROC
// and SROC flags that are true. Years already waiting for a bill run are skipped.
func (s *PersistSupplementaryBillingFlagsService) Go(ctx context.Context, twoPartTariffYears []int, preSroc, sroc bool, licenceID uuid.UUID) error {
	if len(twoPartTariffYears) > 0 {
		if err := s.addSupplementaryYears(ctx, licenceID, twoPartTariffYears); err != nil {
			return err
		}
	}

	update := licensing.LicenceFlagUpdate{PreSroc: preSroc, Sroc: sroc}
	if update.IsEmpty() {
		return nil
	}

	if err := s.licenceRepo.UpdateSupplementaryFlags(ctx, licenceID, update); err != nil {
		return fmt.Errorf("update supplementary flags for licence %s: %w", licenceID, err)
	}
	return nil
}

func (s *PersistSupplementaryBillingFlagsService) addSupplementaryYears(ctx context.Context, licenceID uuid.UUID, years []int) error {
	present, err := s.yearRepo.FindUnclaimedYears(ctx, licenceID, years, true)
	if err != nil {
		return fmt.Errorf("find supplementary years for licence %s: %w", licenceID, err)
	}

	skip := make(map[int]struct{}, len(years))
	for _, year := range present {
		skip[year] = struct{}{}
	}

	var rows []*billing.LicenceSupplementaryYear
	for _, year := range years {
		if _, ok := skip[year]; ok {
			continue
		}
		skip[year] = struct{}{}
		rows = append(rows, billing.NewLicenceSupplementaryYear(licenceID, year, true))
	}

	if len(rows) == 0 {
		return nil
	}

	if err := s.yearRepo.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("create supplementary years for licence %s: %w", licenceID, err)
	}

	s.logger.Debug("Supplementary years flagged",
		zap.String("licence_id", licenceID.String()),
		zap.Int("count", len(rows)))
	return nil
}
