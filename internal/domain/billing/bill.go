package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wrls/backend/internal/domain/shared"
)

// RebillingState records a bill's part in a reissue
type RebillingState string

const (
	// RebillingStateRebilled marks a source bill that has been reissued
	RebillingStateRebilled RebillingState = "rebilled"
	// RebillingStateReversal marks the bill that credits a reissued bill
	RebillingStateReversal RebillingState = "reversal"
	// RebillingStateRebill marks the replacement for a reissued bill
	RebillingStateRebill RebillingState = "rebill"
)

// Bill is the bill for one billing account inside a bill run
type Bill struct {
	shared.BaseEntity
	BillRunID           uuid.UUID
	BillingAccountID    uuid.UUID
	AccountNumber       string
	FinancialYearEnding int
	NetAmount           decimal.Decimal
	Credit              bool
	FlaggedForRebilling bool
	OriginalBillID      *uuid.UUID
	RebillingState      *RebillingState
	BillLicences        []BillLicence
}

// LicenceIDs returns the distinct licences billed on the bill
func (b *Bill) LicenceIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(b.BillLicences))
	ids := make([]uuid.UUID, 0, len(b.BillLicences))
	for _, bl := range b.BillLicences {
		if _, ok := seen[bl.LicenceID]; ok {
			continue
		}
		seen[bl.LicenceID] = struct{}{}
		ids = append(ids, bl.LicenceID)
	}
	return ids
}

// TransactionCount returns the number of transactions across all bill licences
func (b *Bill) TransactionCount() int {
	count := 0
	for _, bl := range b.BillLicences {
		count += len(bl.Transactions)
	}
	return count
}

// RecalculateNetAmount sets the bill total from its transactions
func (b *Bill) RecalculateNetAmount() {
	total := decimal.Zero
	for _, bl := range b.BillLicences {
		total = total.Add(bl.NetAmount())
	}
	b.NetAmount = total
	b.Credit = total.IsNegative()
}

// BillLicence groups a bill's transactions for one licence
type BillLicence struct {
	ID           uuid.UUID
	BillID       uuid.UUID
	LicenceID    uuid.UUID
	LicenceRef   string
	Transactions []Transaction
}

// NetAmount returns the signed total of the bill licence transactions
func (bl *BillLicence) NetAmount() decimal.Decimal {
	total := decimal.Zero
	for _, t := range bl.Transactions {
		total = total.Add(t.NetAmount)
	}
	return total
}

// ChargeType distinguishes standard charges from compensation charges
type ChargeType string

const (
	ChargeTypeStandard     ChargeType = "standard"
	ChargeTypeCompensation ChargeType = "compensation"
)

// Transaction is a single charge line on a bill licence.
// NetAmount is signed; credits are negative.
type Transaction struct {
	ID                 uuid.UUID
	BillLicenceID      uuid.UUID
	ChargeReferenceID  *uuid.UUID
	Description        string
	ChargeType         ChargeType
	ChargeCategoryCode string
	Credit             bool
	NetAmount          decimal.Decimal
	Volume             decimal.Decimal
	BillableDays       int
	AuthorisedDays     int
	StartDate          time.Time
	EndDate            time.Time
}
