package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/licensing"
	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLicenceRepository implements LicenceRepository using GORM
type GormLicenceRepository struct {
	db *gorm.DB
}

// NewGormLicenceRepository creates a new GormLicenceRepository
func NewGormLicenceRepository(db *gorm.DB) *GormLicenceRepository {
	return &GormLicenceRepository{db: db}
}

// FindByID finds a licence by its ID
func (r *GormLicenceRepository) FindByID(ctx context.Context, id uuid.UUID) (*licensing.Licence, error) {
	var model models.LicenceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateSupplementaryFlags raises the flags set in update. Flags that are
// false in update are left as they are.
func (r *GormLicenceRepository) UpdateSupplementaryFlags(ctx context.Context, id uuid.UUID, update licensing.LicenceFlagUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	updates := map[string]any{"updated_at": time.Now()}
	if update.PreSroc {
		updates["include_in_presroc_billing"] = string(licensing.PresrocBillingYes)
	}
	if update.Sroc {
		updates["include_in_sroc_billing"] = true
	}

	result := r.db.WithContext(ctx).
		Model(&models.LicenceModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ licensing.LicenceRepository = (*GormLicenceRepository)(nil)
