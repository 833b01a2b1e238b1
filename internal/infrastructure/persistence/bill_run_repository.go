package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillRunRepository implements BillRunRepository using GORM
type GormBillRunRepository struct {
	db *gorm.DB
}

// NewGormBillRunRepository creates a new GormBillRunRepository
func NewGormBillRunRepository(db *gorm.DB) *GormBillRunRepository {
	return &GormBillRunRepository{db: db}
}

// FindByID finds a bill run by its ID
func (r *GormBillRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillRun, error) {
	var model models.BillRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindExistingYears returns the distinct to-financial-year-endings of the bill
// runs matching filter, ascending
func (r *GormBillRunRepository) FindExistingYears(ctx context.Context, filter billing.ExistingBillRunFilter) ([]int, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	batchTypes := make([]string, 0, len(filter.BatchTypes))
	for _, bt := range filter.BatchTypes {
		batchTypes = append(batchTypes, string(bt))
	}
	if len(statuses) == 0 || len(batchTypes) == 0 {
		return []int{}, nil
	}

	years := make([]int, 0)
	err := r.db.WithContext(ctx).
		Model(&models.BillRunModel{}).
		Where("region_id = ?", filter.RegionID).
		Where("scheme = ?", string(filter.Scheme)).
		Where("status IN ?", statuses).
		Where("batch_type IN ?", batchTypes).
		Where("to_financial_year_ending >= ?", filter.MinToFinancialYearEnding).
		Distinct().
		Order("to_financial_year_ending ASC").
		Pluck("to_financial_year_ending", &years).Error
	if err != nil {
		return nil, err
	}
	return years, nil
}

// Create persists a new bill run
func (r *GormBillRunRepository) Create(ctx context.Context, billRun *billing.BillRun) error {
	return r.db.WithContext(ctx).Create(models.BillRunModelFromDomain(billRun)).Error
}

// UpdateStatus sets the status of a bill run
func (r *GormBillRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.BillRunStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.BillRunModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ billing.BillRunRepository = (*GormBillRunRepository)(nil)
