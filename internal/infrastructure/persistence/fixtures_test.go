package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func createLicence(t *testing.T, db *gorm.DB, regionID uuid.UUID, ref string, start time.Time) *models.LicenceModel {
	licence := &models.LicenceModel{
		BaseModel:  models.BaseModel{ID: uuid.New()},
		LicenceRef: ref,
		RegionID:   regionID,
		StartDate:  start,
	}
	require.NoError(t, db.Create(licence).Error)
	return licence
}

func createBillRun(t *testing.T, db *gorm.DB, regionID uuid.UUID, batchType billing.BatchType, status billing.BillRunStatus, year int) *models.BillRunModel {
	return createBillRunWithScheme(t, db, regionID, billing.SchemeSroc, batchType, status, year)
}

func createBillRunWithScheme(t *testing.T, db *gorm.DB, regionID uuid.UUID, scheme billing.Scheme, batchType billing.BatchType, status billing.BillRunStatus, year int) *models.BillRunModel {
	billRun := &models.BillRunModel{
		BaseModel:               models.BaseModel{ID: uuid.New()},
		RegionID:                regionID,
		Scheme:                  string(scheme),
		BatchType:               string(batchType),
		Status:                  string(status),
		FromFinancialYearEnding: year,
		ToFinancialYearEnding:   year,
	}
	require.NoError(t, db.Create(billRun).Error)
	return billRun
}

// createBill inserts a bill with one bill licence per licence, each holding a
// single transaction of amount
func createBill(t *testing.T, db *gorm.DB, billRunID uuid.UUID, flagged bool, amount string, licenceIDs ...uuid.UUID) *models.BillModel {
	net := decimal.RequireFromString(amount)
	bill := &models.BillModel{
		BaseModel:           models.BaseModel{ID: uuid.New()},
		BillRunID:           billRunID,
		BillingAccountID:    uuid.New(),
		AccountNumber:       "A12345678A",
		FinancialYearEnding: 2024,
		FlaggedForRebilling: flagged,
	}
	for i, licenceID := range licenceIDs {
		billLicenceID := uuid.New()
		bill.BillLicences = append(bill.BillLicences, models.BillLicenceModel{
			ID:         billLicenceID,
			LicenceID:  licenceID,
			LicenceRef: "01/" + string(rune('A'+i)),
			Transactions: []models.TransactionModel{{
				ID:            uuid.New(),
				BillLicenceID: billLicenceID,
				Description:   "Water abstraction charge",
				ChargeType:    string(billing.ChargeTypeStandard),
				NetAmount:     net,
				Volume:        decimal.NewFromInt(10),
				BillableDays:  365,
				StartDate:     date(2023, time.April, 1),
				EndDate:       date(2024, time.March, 31),
			}},
		})
		bill.NetAmount = bill.NetAmount.Add(net)
	}
	require.NoError(t, db.Create(bill).Error)
	return bill
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
