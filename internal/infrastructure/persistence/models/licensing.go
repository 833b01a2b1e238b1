package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
	"gorm.io/gorm"
)

// LicenceModel is the persistence model for a licence
type LicenceModel struct {
	BaseModel
	LicenceRef              string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	RegionID                uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartDate               time.Time  `gorm:"type:date;not null"`
	ExpiredDate             *time.Time `gorm:"type:date"`
	LapsedDate              *time.Time `gorm:"type:date"`
	RevokedDate             *time.Time `gorm:"type:date"`
	IncludeInPresrocBilling *string    `gorm:"type:varchar(3)"`
	IncludeInSrocBilling    bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (LicenceModel) TableName() string {
	return "licences"
}

// ToDomain converts the persistence model to a domain Licence
func (m *LicenceModel) ToDomain() *licensing.Licence {
	licence := &licensing.Licence{
		ID:                   m.ID,
		LicenceRef:           m.LicenceRef,
		RegionID:             m.RegionID,
		StartDate:            m.StartDate,
		ExpiredDate:          m.ExpiredDate,
		LapsedDate:           m.LapsedDate,
		RevokedDate:          m.RevokedDate,
		IncludeInSrocBilling: m.IncludeInSrocBilling,
	}
	if m.IncludeInPresrocBilling != nil {
		licence.IncludeInPresrocBilling = licensing.PresrocBillingFlag(*m.IncludeInPresrocBilling)
	}
	return licence
}

// FromDomain populates the persistence model from a domain Licence
func (m *LicenceModel) FromDomain(l *licensing.Licence) {
	m.ID = l.ID
	m.LicenceRef = l.LicenceRef
	m.RegionID = l.RegionID
	m.StartDate = l.StartDate
	m.ExpiredDate = l.ExpiredDate
	m.LapsedDate = l.LapsedDate
	m.RevokedDate = l.RevokedDate
	m.IncludeInSrocBilling = l.IncludeInSrocBilling
	m.IncludeInPresrocBilling = nil
	if l.IncludeInPresrocBilling != licensing.PresrocBillingUnset {
		flag := string(l.IncludeInPresrocBilling)
		m.IncludeInPresrocBilling = &flag
	}
}

// LicenceModelFromDomain creates a new persistence model from a domain Licence
func LicenceModelFromDomain(l *licensing.Licence) *LicenceModel {
	m := &LicenceModel{}
	m.FromDomain(l)
	return m
}

// ChargeVersionModel is the persistence model for a charge version
type ChargeVersionModel struct {
	BaseModel
	LicenceID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	Scheme           string                 `gorm:"type:varchar(10);not null"`
	Status           string                 `gorm:"type:varchar(20);not null;default:'current'"`
	StartDate        time.Time              `gorm:"type:date;not null"`
	EndDate          *time.Time             `gorm:"type:date"`
	ChargeReferences []ChargeReferenceModel `gorm:"foreignKey:ChargeVersionID"`
	Licence          *LicenceModel          `gorm:"foreignKey:LicenceID"`
}

// TableName returns the table name for GORM
func (ChargeVersionModel) TableName() string {
	return "charge_versions"
}

// ToDomain converts the persistence model to a domain ChargeVersion
func (m *ChargeVersionModel) ToDomain() *licensing.ChargeVersion {
	cv := &licensing.ChargeVersion{
		ID:               m.ID,
		LicenceID:        m.LicenceID,
		Scheme:           billing.Scheme(m.Scheme),
		Status:           m.Status,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		ChargeReferences: make([]licensing.ChargeReference, 0, len(m.ChargeReferences)),
	}
	for i := range m.ChargeReferences {
		cv.ChargeReferences = append(cv.ChargeReferences, *m.ChargeReferences[i].ToDomain())
	}
	if m.Licence != nil {
		cv.Licence = m.Licence.ToDomain()
	}
	return cv
}

// ChargeVersionModelFromDomain creates a persistence model from a domain
// ChargeVersion, including its charge references
func ChargeVersionModelFromDomain(cv *licensing.ChargeVersion) *ChargeVersionModel {
	m := &ChargeVersionModel{
		BaseModel: BaseModel{ID: cv.ID},
		LicenceID: cv.LicenceID,
		Scheme:    string(cv.Scheme),
		Status:    cv.Status,
		StartDate: cv.StartDate,
		EndDate:   cv.EndDate,
	}
	for _, ref := range cv.ChargeReferences {
		m.ChargeReferences = append(m.ChargeReferences, ChargeReferenceModel{
			ID:              ref.ID,
			ChargeVersionID: cv.ID,
			Scheme:          string(ref.Scheme),
			TwoPartTariff:   ref.TwoPartTariff,
		})
	}
	return m
}

// ChargeReferenceModel is the persistence model for a charge reference
type ChargeReferenceModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ChargeVersionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Scheme          string    `gorm:"type:varchar(10);not null"`
	TwoPartTariff   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ChargeReferenceModel) TableName() string {
	return "charge_references"
}

// ToDomain converts the persistence model to a domain ChargeReference
func (m *ChargeReferenceModel) ToDomain() *licensing.ChargeReference {
	return &licensing.ChargeReference{
		ID:              m.ID,
		ChargeVersionID: m.ChargeVersionID,
		Scheme:          billing.Scheme(m.Scheme),
		TwoPartTariff:   m.TwoPartTariff,
	}
}

// ReturnLogModel is the persistence model for a return log. Its ID is the
// natural return reference, not a UUID.
type ReturnLogModel struct {
	ID         string        `gorm:"type:varchar(255);primary_key"`
	LicenceRef string        `gorm:"type:varchar(50);not null;index"`
	StartDate  time.Time     `gorm:"type:date;not null"`
	EndDate    time.Time     `gorm:"type:date;not null"`
	Metadata   string        `gorm:"type:jsonb;not null;default:'{}'"`
	Licence    *LicenceModel `gorm:"foreignKey:LicenceRef;references:LicenceRef"`
	CreatedAt  time.Time     `gorm:"not null"`
	UpdatedAt  time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnLogModel) TableName() string {
	return "return_logs"
}

// ToDomain converts the persistence model to a domain ReturnLog
func (m *ReturnLogModel) ToDomain() *licensing.ReturnLog {
	rl := &licensing.ReturnLog{
		ID:            m.ID,
		LicenceRef:    m.LicenceRef,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		TwoPartTariff: licensing.TwoPartTariffFromMetadata([]byte(m.Metadata)),
	}
	if m.Licence != nil {
		rl.Licence = m.Licence.ToDomain()
	}
	return rl
}

// WorkflowModel is the persistence model for a charge workflow entry.
// Deleted workflows are soft-deleted.
type WorkflowModel struct {
	BaseModel
	LicenceID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status    string         `gorm:"type:varchar(20);not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Licence   *LicenceModel  `gorm:"foreignKey:LicenceID"`
}

// TableName returns the table name for GORM
func (WorkflowModel) TableName() string {
	return "workflows"
}

// ToDomain converts the persistence model to a domain Workflow. Charge
// versions are loaded separately.
func (m *WorkflowModel) ToDomain() *licensing.Workflow {
	wf := &licensing.Workflow{
		ID:        m.ID,
		LicenceID: m.LicenceID,
		Status:    licensing.WorkflowStatus(m.Status),
	}
	if m.Licence != nil {
		wf.Licence = m.Licence.ToDomain()
	}
	return wf
}
