package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLicenceSupplementaryYearRepository implements
// LicenceSupplementaryYearRepository using GORM
type GormLicenceSupplementaryYearRepository struct {
	db *gorm.DB
}

// NewGormLicenceSupplementaryYearRepository creates a new GormLicenceSupplementaryYearRepository
func NewGormLicenceSupplementaryYearRepository(db *gorm.DB) *GormLicenceSupplementaryYearRepository {
	return &GormLicenceSupplementaryYearRepository{db: db}
}

// FindUnclaimedYears returns which of years already have a row for the
// licence that no bill run has claimed
func (r *GormLicenceSupplementaryYearRepository) FindUnclaimedYears(ctx context.Context, licenceID uuid.UUID, years []int, twoPartTariff bool) ([]int, error) {
	if len(years) == 0 {
		return []int{}, nil
	}

	found := make([]int, 0)
	err := r.db.WithContext(ctx).
		Model(&models.LicenceSupplementaryYearModel{}).
		Where("licence_id = ?", licenceID).
		Where("bill_run_id IS NULL").
		Where("two_part_tariff = ?", twoPartTariff).
		Where("financial_year_end IN ?", years).
		Distinct().
		Order("financial_year_end ASC").
		Pluck("financial_year_end", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateBatch persists new supplementary years. A year that a concurrent
// flagging run has just inserted is skipped.
func (r *GormLicenceSupplementaryYearRepository) CreateBatch(ctx context.Context, years []*billing.LicenceSupplementaryYear) error {
	if len(years) == 0 {
		return nil
	}

	rows := make([]*models.LicenceSupplementaryYearModel, 0, len(years))
	for _, y := range years {
		rows = append(rows, models.LicenceSupplementaryYearModelFromDomain(y))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// UnassignFromBillRun releases the years the bill run claimed for the given
// licences and returns how many were released. A claimed year that has since
// been flagged again already has an unclaimed row, so the claimed row is
// removed instead of unassigned.
func (r *GormLicenceSupplementaryYearRepository) UnassignFromBillRun(ctx context.Context, billRunID uuid.UUID, licenceIDs []uuid.UUID) (int64, error) {
	if len(licenceIDs) == 0 {
		return 0, nil
	}

	var released int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claimed []models.LicenceSupplementaryYearModel
		if err := tx.Where("bill_run_id = ?", billRunID).
			Where("licence_id IN ?", licenceIDs).
			Order("financial_year_end ASC").
			Find(&claimed).Error; err != nil {
			return err
		}

		for _, row := range claimed {
			var unclaimed int64
			if err := tx.Model(&models.LicenceSupplementaryYearModel{}).
				Where("licence_id = ?", row.LicenceID).
				Where("financial_year_end = ?", row.FinancialYearEnd).
				Where("two_part_tariff = ?", row.TwoPartTariff).
				Where("bill_run_id IS NULL").
				Count(&unclaimed).Error; err != nil {
				return err
			}

			if unclaimed > 0 {
				if err := tx.Where("id = ?", row.ID).Delete(&models.LicenceSupplementaryYearModel{}).Error; err != nil {
					return err
				}
			} else if err := tx.Model(&models.LicenceSupplementaryYearModel{}).
				Where("id = ?", row.ID).
				Updates(map[string]any{"bill_run_id": nil, "updated_at": time.Now()}).Error; err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

var _ billing.LicenceSupplementaryYearRepository = (*GormLicenceSupplementaryYearRepository)(nil)
