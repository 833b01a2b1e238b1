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

// GormWorkflowRepository implements WorkflowRepository using GORM
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewGormWorkflowRepository creates a new GormWorkflowRepository
func NewGormWorkflowRepository(db *gorm.DB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// FindWithLicence finds a workflow that has not been deleted, with its
// licence and the licence's charge versions
func (r *GormWorkflowRepository) FindWithLicence(ctx context.Context, id uuid.UUID) (*licensing.Workflow, error) {
	db := r.db.WithContext(ctx)

	var model models.WorkflowModel
	if err := db.Preload("Licence").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if model.Licence == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Workflow licence not found")
	}

	versions, err := findChargeVersionsByLicence(db, model.LicenceID)
	if err != nil {
		return nil, err
	}

	workflow := model.ToDomain()
	workflow.ChargeVersions = versions
	return workflow, nil
}

var _ licensing.WorkflowRepository = (*GormWorkflowRepository)(nil)
