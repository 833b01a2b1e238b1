package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill with its bill licences
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Preload("BillLicences").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBillLicenceByID finds a bill licence
func (r *GormBillRepository) FindBillLicenceByID(ctx context.Context, id uuid.UUID) (*billing.BillLicence, error) {
	var model models.BillLicenceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindFlaggedForRebilling returns the SROC bills of the region flagged for
// rebilling, oldest first, with bill licences and transactions loaded
func (r *GormBillRepository) FindFlaggedForRebilling(ctx context.Context, regionID uuid.UUID) ([]*billing.Bill, error) {
	var rows []models.BillModel
	if err := r.flaggedBills(r.db.WithContext(ctx)).
		Where("bill_runs.region_id = ?", regionID).
		Select("bills.*").
		Preload("BillLicences.Transactions").
		Order("bills.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	bills := make([]*billing.Bill, 0, len(rows))
	for i := range rows {
		bills = append(bills, rows[i].ToDomain())
	}
	return bills, nil
}

// FindRegionsWithFlaggedBills returns the regions with SROC bills flagged for rebilling
func (r *GormBillRepository) FindRegionsWithFlaggedBills(ctx context.Context) ([]uuid.UUID, error) {
	regionIDs := make([]uuid.UUID, 0)
	if err := r.flaggedBills(r.db.WithContext(ctx)).
		Distinct().
		Pluck("bill_runs.region_id", &regionIDs).Error; err != nil {
		return nil, err
	}
	return regionIDs, nil
}

// CountFlaggedForRebilling returns the number of SROC bills of the region
// flagged for rebilling
func (r *GormBillRepository) CountFlaggedForRebilling(ctx context.Context, regionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.flaggedBills(r.db.WithContext(ctx)).
		Where("bill_runs.region_id = ?", regionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormBillRepository) flaggedBills(db *gorm.DB) *gorm.DB {
	return db.Model(&models.BillModel{}).
		Joins("JOIN bill_runs ON bill_runs.id = bills.bill_run_id").
		Where("bill_runs.scheme = ?", string(billing.SchemeSroc)).
		Where("bills.flagged_for_rebilling = ?", true)
}

// SaveReissue inserts the reversal and rebill bills of every set and moves
// the source bills to rebilled, all in one transaction
func (r *GormBillRepository) SaveReissue(ctx context.Context, sets []*billing.ReissueSet) error {
	if len(sets) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, set := range sets {
			for _, bill := range set.GeneratedBills() {
				if err := tx.Create(models.BillModelFromDomain(bill)).Error; err != nil {
					return err
				}
			}

			result := tx.Model(&models.BillModel{}).
				Where("id = ?", set.Source.ID).
				Updates(map[string]any{
					"flagged_for_rebilling": false,
					"rebilling_state":       string(billing.RebillingStateRebilled),
					"updated_at":            time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}
		return nil
	})
}

// DeleteBill removes a bill with its bill licences and transactions
func (r *GormBillRepository) DeleteBill(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		billLicenceIDs := tx.Model(&models.BillLicenceModel{}).Select("id").Where("bill_id = ?", id)

		if err := tx.Where("bill_licence_id IN (?)", billLicenceIDs).Delete(&models.TransactionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", id).Delete(&models.BillLicenceModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.BillModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteBillLicence removes a bill licence with its transactions. The parent
// bill is removed when no bill licences remain, otherwise its total is
// recalculated from the remaining transactions.
func (r *GormBillRepository) DeleteBillLicence(ctx context.Context, id uuid.UUID) (bool, error) {
	billRemoved := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var billLicence models.BillLicenceModel
		if err := tx.First(&billLicence, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("bill_licence_id = ?", id).Delete(&models.TransactionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.BillLicenceModel{}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.BillLicenceModel{}).Where("bill_id = ?", billLicence.BillID).Count(&remaining).Error; err != nil {
			return err
		}

		if remaining == 0 {
			billRemoved = true
			return tx.Where("id = ?", billLicence.BillID).Delete(&models.BillModel{}).Error
		}

		return recalculateBillTotal(tx, billLicence.BillID)
	})
	if err != nil {
		return false, err
	}
	return billRemoved, nil
}

func recalculateBillTotal(tx *gorm.DB, billID uuid.UUID) error {
	var amounts []decimal.Decimal
	if err := tx.Model(&models.TransactionModel{}).
		Joins("JOIN bill_licences ON bill_licences.id = transactions.bill_licence_id").
		Where("bill_licences.bill_id = ?", billID).
		Pluck("transactions.net_amount", &amounts).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}

	return tx.Model(&models.BillModel{}).
		Where("id = ?", billID).
		Updates(map[string]any{
			"net_amount": total,
			"credit":     total.IsNegative(),
			"updated_at": time.Now(),
		}).Error
}

// CountByBillRun returns the number of bills in a bill run
func (r *GormBillRepository) CountByBillRun(ctx context.Context, billRunID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("bill_run_id = ?", billRunID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.BillRepository = (*GormBillRepository)(nil)
