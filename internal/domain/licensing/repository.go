package licensing

import (
	"context"

	"github.com/google/uuid"
)

// LicenceRepository defines the interface for licence persistence
type LicenceRepository interface {
	// FindByID finds a licence by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Licence, error)

	// UpdateSupplementaryFlags raises the flags set in update. False values are not written.
	UpdateSupplementaryFlags(ctx context.Context, id uuid.UUID, update LicenceFlagUpdate) error
}

// ChargeVersionRepository defines the interface for charge version reads
type ChargeVersionRepository interface {
	// FindWithLicenceAndReferences finds a charge version with its licence and
	// charge references loaded
	FindWithLicenceAndReferences(ctx context.Context, id uuid.UUID) (*ChargeVersion, error)

	// FindByLicence returns every charge version of a licence with charge references loaded
	FindByLicence(ctx context.Context, licenceID uuid.UUID) ([]ChargeVersion, error)
}

// ReturnLogRepository defines the interface for return log reads
type ReturnLogRepository interface {
	// FindWithLicence finds a return log with its licence loaded
	FindWithLicence(ctx context.Context, id string) (*ReturnLog, error)
}

// WorkflowRepository defines the interface for workflow reads
type WorkflowRepository interface {
	// FindWithLicence finds a live workflow with its licence and the licence's
	// charge versions loaded
	FindWithLicence(ctx context.Context, id uuid.UUID) (*Workflow, error)
}
