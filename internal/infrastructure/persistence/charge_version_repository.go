package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/licensing"
	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormChargeVersionRepository implements ChargeVersionRepository using GORM
type GormChargeVersionRepository struct {
	db *gorm.DB
}

// NewGormChargeVersionRepository creates a new GormChargeVersionRepository
func NewGormChargeVersionRepository(db *gorm.DB) *GormChargeVersionRepository {
	return &GormChargeVersionRepository{db: db}
}

// FindWithLicenceAndReferences finds a charge version with its licence and charge references
func (r *GormChargeVersionRepository) FindWithLicenceAndReferences(ctx context.Context, id uuid.UUID) (*licensing.ChargeVersion, error) {
	var model models.ChargeVersionModel
	if err := r.db.WithContext(ctx).
		Preload("Licence").
		Preload("ChargeReferences").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if model.Licence == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Charge version licence not found")
	}
	return model.ToDomain(), nil
}

// FindByLicence returns the licence's charge versions, oldest first
func (r *GormChargeVersionRepository) FindByLicence(ctx context.Context, licenceID uuid.UUID) ([]licensing.ChargeVersion, error) {
	return findChargeVersionsByLicence(r.db.WithContext(ctx), licenceID)
}

func findChargeVersionsByLicence(db *gorm.DB, licenceID uuid.UUID) ([]licensing.ChargeVersion, error) {
	var rows []models.ChargeVersionModel
	if err := db.
		Preload("ChargeReferences").
		Where("licence_id = ?", licenceID).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	versions := make([]licensing.ChargeVersion, 0, len(rows))
	for i := range rows {
		versions = append(versions, *rows[i].ToDomain())
	}
	return versions, nil
}

var _ licensing.ChargeVersionRepository = (*GormChargeVersionRepository)(nil)
