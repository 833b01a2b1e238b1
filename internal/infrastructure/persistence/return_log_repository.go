package persistence

import (
	"context"
	"errors"

	"github.com/wrls/backend/internal/domain/licensing"
	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReturnLogRepository implements ReturnLogRepository using GORM
type GormReturnLogRepository struct {
	db *gorm.DB
}

// NewGormReturnLogRepository creates a new GormReturnLogRepository
func NewGormReturnLogRepository(db *gorm.DB) *GormReturnLogRepository {
	return &GormReturnLogRepository{db: db}
}

// FindWithLicence finds a return log with the licence it was submitted against
func (r *GormReturnLogRepository) FindWithLicence(ctx context.Context, id string) (*licensing.ReturnLog, error) {
	var model models.ReturnLogModel
	if err := r.db.WithContext(ctx).
		Preload("Licence").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if model.Licence == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Return log licence not found")
	}
	return model.ToDomain(), nil
}

var _ licensing.ReturnLogRepository = (*GormReturnLogRepository)(nil)
