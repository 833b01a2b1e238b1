package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wrls/backend/internal/domain/billing"
)

// BillRunModel is the persistence model for a bill run
type BillRunModel struct {
	BaseModel
	RegionID                uuid.UUID `gorm:"type:uuid;not null;index"`
	Scheme                  string    `gorm:"type:varchar(10);not null"`
	BatchType               string    `gorm:"type:varchar(20);not null"`
	Status                  string    `gorm:"type:varchar(20);not null;index"`
	FromFinancialYearEnding int       `gorm:"not null"`
	ToFinancialYearEnding   int       `gorm:"not null"`
	RunReference            string    `gorm:"type:varchar(26)"`
}

// TableName returns the table name for GORM
func (BillRunModel) TableName() string {
	return "bill_runs"
}

// ToDomain converts the persistence model to a domain BillRun
func (m *BillRunModel) ToDomain() *billing.BillRun {
	return &billing.BillRun{
		BaseEntity:              m.BaseModel.ToDomain(),
		RegionID:                m.RegionID,
		Scheme:                  billing.Scheme(m.Scheme),
		BatchType:               billing.BatchType(m.BatchType),
		Status:                  billing.BillRunStatus(m.Status),
		FromFinancialYearEnding: m.FromFinancialYearEnding,
		ToFinancialYearEnding:   m.ToFinancialYearEnding,
		RunReference:            m.RunReference,
	}
}

// BillRunModelFromDomain creates a persistence model from a domain BillRun
func BillRunModelFromDomain(r *billing.BillRun) *BillRunModel {
	m := &BillRunModel{
		RegionID:                r.RegionID,
		Scheme:                  string(r.Scheme),
		BatchType:               string(r.BatchType),
		Status:                  string(r.Status),
		FromFinancialYearEnding: r.FromFinancialYearEnding,
		ToFinancialYearEnding:   r.ToFinancialYearEnding,
		RunReference:            r.RunReference,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// BillModel is the persistence model for a bill
type BillModel struct {
	BaseModel
	BillRunID           uuid.UUID          `gorm:"type:uuid;not null;index"`
	BillingAccountID    uuid.UUID          `gorm:"type:uuid;not null"`
	AccountNumber       string             `gorm:"type:varchar(20);not null"`
	FinancialYearEnding int                `gorm:"not null"`
	NetAmount           decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Credit              bool               `gorm:"not null;default:false"`
	FlaggedForRebilling bool               `gorm:"not null;default:false;index"`
	OriginalBillID      *uuid.UUID         `gorm:"type:uuid"`
	RebillingState      *string            `gorm:"type:varchar(10)"`
	BillLicences        []BillLicenceModel `gorm:"foreignKey:BillID"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill, including any
// loaded bill licences and transactions
func (m *BillModel) ToDomain() *billing.Bill {
	bill := &billing.Bill{
		BaseEntity:          m.BaseModel.ToDomain(),
		BillRunID:           m.BillRunID,
		BillingAccountID:    m.BillingAccountID,
		AccountNumber:       m.AccountNumber,
		FinancialYearEnding: m.FinancialYearEnding,
		NetAmount:           m.NetAmount,
		Credit:              m.Credit,
		FlaggedForRebilling: m.FlaggedForRebilling,
		OriginalBillID:      m.OriginalBillID,
		BillLicences:        make([]billing.BillLicence, 0, len(m.BillLicences)),
	}
	if m.RebillingState != nil {
		state := billing.RebillingState(*m.RebillingState)
		bill.RebillingState = &state
	}
	for i := range m.BillLicences {
		bill.BillLicences = append(bill.BillLicences, *m.BillLicences[i].ToDomain())
	}
	return bill
}

// BillModelFromDomain creates a persistence model from a domain Bill,
// including its bill licences and transactions
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		BillRunID:           b.BillRunID,
		BillingAccountID:    b.BillingAccountID,
		AccountNumber:       b.AccountNumber,
		FinancialYearEnding: b.FinancialYearEnding,
		NetAmount:           b.NetAmount,
		Credit:              b.Credit,
		FlaggedForRebilling: b.FlaggedForRebilling,
		OriginalBillID:      b.OriginalBillID,
		BillLicences:        make([]BillLicenceModel, 0, len(b.BillLicences)),
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	if b.RebillingState != nil {
		state := string(*b.RebillingState)
		m.RebillingState = &state
	}
	for i := range b.BillLicences {
		m.BillLicences = append(m.BillLicences, *BillLicenceModelFromDomain(&b.BillLicences[i], b.ID))
	}
	return m
}

// BillLicenceModel is the persistence model for a bill licence
type BillLicenceModel struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key"`
	BillID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	LicenceID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	LicenceRef   string             `gorm:"type:varchar(50);not null"`
	Transactions []TransactionModel `gorm:"foreignKey:BillLicenceID"`
	CreatedAt    time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillLicenceModel) TableName() string {
	return "bill_licences"
}

// ToDomain converts the persistence model to a domain BillLicence
func (m *BillLicenceModel) ToDomain() *billing.BillLicence {
	bl := &billing.BillLicence{
		ID:           m.ID,
		BillID:       m.BillID,
		LicenceID:    m.LicenceID,
		LicenceRef:   m.LicenceRef,
		Transactions: make([]billing.Transaction, 0, len(m.Transactions)),
	}
	for i := range m.Transactions {
		bl.Transactions = append(bl.Transactions, *m.Transactions[i].ToDomain())
	}
	return bl
}

// BillLicenceModelFromDomain creates a persistence model for a bill licence of billID
func BillLicenceModelFromDomain(bl *billing.BillLicence, billID uuid.UUID) *BillLicenceModel {
	m := &BillLicenceModel{
		ID:           bl.ID,
		BillID:       billID,
		LicenceID:    bl.LicenceID,
		LicenceRef:   bl.LicenceRef,
		Transactions: make([]TransactionModel, 0, len(bl.Transactions)),
	}
	for i := range bl.Transactions {
		m.Transactions = append(m.Transactions, *TransactionModelFromDomain(&bl.Transactions[i], bl.ID))
	}
	return m
}

// TransactionModel is the persistence model for a bill transaction
type TransactionModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	BillLicenceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChargeReferenceID  *uuid.UUID      `gorm:"type:uuid"`
	Description        string          `gorm:"type:text"`
	ChargeType         string          `gorm:"type:varchar(20);not null;default:'standard'"`
	ChargeCategoryCode string          `gorm:"type:varchar(20)"`
	Credit             bool            `gorm:"not null;default:false"`
	NetAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Volume             decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	BillableDays       int             `gorm:"not null;default:0"`
	AuthorisedDays     int             `gorm:"not null;default:0"`
	StartDate          time.Time       `gorm:"type:date;not null"`
	EndDate            time.Time       `gorm:"type:date;not null"`
	CreatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *billing.Transaction {
	return &billing.Transaction{
		ID:                 m.ID,
		BillLicenceID:      m.BillLicenceID,
		ChargeReferenceID:  m.ChargeReferenceID,
		Description:        m.Description,
		ChargeType:         billing.ChargeType(m.ChargeType),
		ChargeCategoryCode: m.ChargeCategoryCode,
		Credit:             m.Credit,
		NetAmount:          m.NetAmount,
		Volume:             m.Volume,
		BillableDays:       m.BillableDays,
		AuthorisedDays:     m.AuthorisedDays,
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
	}
}

// TransactionModelFromDomain creates a persistence model for a transaction of billLicenceID
func TransactionModelFromDomain(t *billing.Transaction, billLicenceID uuid.UUID) *TransactionModel {
	return &TransactionModel{
		ID:                 t.ID,
		BillLicenceID:      billLicenceID,
		ChargeReferenceID:  t.ChargeReferenceID,
		Description:        t.Description,
		ChargeType:         string(t.ChargeType),
		ChargeCategoryCode: t.ChargeCategoryCode,
		Credit:             t.Credit,
		NetAmount:          t.NetAmount,
		Volume:             t.Volume,
		BillableDays:       t.BillableDays,
		AuthorisedDays:     t.AuthorisedDays,
		StartDate:          t.StartDate,
		EndDate:            t.EndDate,
	}
}

// LicenceSupplementaryYearModel is the persistence model for a licence
// supplementary year
//
// At most one unclaimed row may exist per licence, year and kind, matching
// idx_licence_supplementary_years_unclaimed in the migrations.
type LicenceSupplementaryYearModel struct {
	BaseModel
	LicenceID        uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_licence_supplementary_years_unclaimed,priority:1,where:bill_run_id IS NULL"`
	BillRunID        *uuid.UUID `gorm:"type:uuid;index"`
	FinancialYearEnd int        `gorm:"not null;uniqueIndex:idx_licence_supplementary_years_unclaimed,priority:2"`
	TwoPartTariff    bool       `gorm:"not null;default:false;uniqueIndex:idx_licence_supplementary_years_unclaimed,priority:3"`
}

// TableName returns the table name for GORM
func (LicenceSupplementaryYearModel) TableName() string {
	return "licence_supplementary_years"
}

// ToDomain converts the persistence model to a domain LicenceSupplementaryYear
func (m *LicenceSupplementaryYearModel) ToDomain() *billing.LicenceSupplementaryYear {
	return &billing.LicenceSupplementaryYear{
		BaseEntity:       m.BaseModel.ToDomain(),
		LicenceID:        m.LicenceID,
		BillRunID:        m.BillRunID,
		FinancialYearEnd: m.FinancialYearEnd,
		TwoPartTariff:    m.TwoPartTariff,
	}
}

// LicenceSupplementaryYearModelFromDomain creates a persistence model from a
// domain LicenceSupplementaryYear
func LicenceSupplementaryYearModelFromDomain(y *billing.LicenceSupplementaryYear) *LicenceSupplementaryYearModel {
	m := &LicenceSupplementaryYearModel{
		LicenceID:        y.LicenceID,
		BillRunID:        y.BillRunID,
		FinancialYearEnd: y.FinancialYearEnd,
		TwoPartTariff:    y.TwoPartTariff,
	}
	m.FromDomainBaseEntity(y.BaseEntity)
	return m
}
