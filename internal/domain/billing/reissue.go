package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/shared"
)

// ReissueSet is everything generated when reissuing one bill
type ReissueSet struct {
	// Source is the flagged bill, updated to its rebilled state
	Source   *Bill
	Reversal *Bill
	Rebill   *Bill
}

// GeneratedBills returns the new bills in insert order
func (s *ReissueSet) GeneratedBills() []*Bill {
	return []*Bill{s.Reversal, s.Rebill}
}

// ReissueBill generates the reversal and rebill bills that replace source in
// billRun, and moves source out of the rebilling queue
func ReissueBill(source *Bill, billRun *BillRun) (*ReissueSet, error) {
	if source == nil || billRun == nil {
		return nil, shared.ErrInvalidInput
	}
	if !source.FlaggedForRebilling {
		return nil, shared.NewDomainError("INVALID_STATE", "Bill is not flagged for rebilling")
	}

	originalID := source.ID
	if source.OriginalBillID != nil {
		originalID = *source.OriginalBillID
	}

	reversal := copyBill(source, billRun.ID, originalID, RebillingStateReversal, true)
	rebill := copyBill(source, billRun.ID, originalID, RebillingStateRebill, false)

	rebilled := RebillingStateRebilled
	source.FlaggedForRebilling = false
	source.RebillingState = &rebilled
	source.UpdatedAt = time.Now()

	return &ReissueSet{
		Source:   source,
		Reversal: reversal,
		Rebill:   rebill,
	}, nil
}

func copyBill(source *Bill, billRunID, originalID uuid.UUID, state RebillingState, reverse bool) *Bill {
	bill := &Bill{
		BaseEntity:          shared.NewBaseEntity(),
		BillRunID:           billRunID,
		BillingAccountID:    source.BillingAccountID,
		AccountNumber:       source.AccountNumber,
		FinancialYearEnding: source.FinancialYearEnding,
		OriginalBillID:      &originalID,
		RebillingState:      &state,
		BillLicences:        make([]BillLicence, 0, len(source.BillLicences)),
	}

	for _, sourceLicence := range source.BillLicences {
		billLicence := BillLicence{
			ID:           uuid.New(),
			BillID:       bill.ID,
			LicenceID:    sourceLicence.LicenceID,
			LicenceRef:   sourceLicence.LicenceRef,
			Transactions: make([]Transaction, 0, len(sourceLicence.Transactions)),
		}
		for _, sourceTx := range sourceLicence.Transactions {
			tx := sourceTx
			tx.ID = uuid.New()
			tx.BillLicenceID = billLicence.ID
			if reverse {
				tx.Credit = !sourceTx.Credit
				tx.NetAmount = sourceTx.NetAmount.Neg()
			}
			billLicence.Transactions = append(billLicence.Transactions, tx)
		}
		bill.BillLicences = append(bill.BillLicences, billLicence)
	}

	bill.RecalculateNetAmount()
	return bill
}
