package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrls/backend/internal/application/supplementary"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func TestGormLicenceSupplementaryYearRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLicenceSupplementaryYearRepository(db)
	ctx := context.Background()

	licenceID := uuid.New()
	otherLicenceID := uuid.New()
	billRunID := uuid.New()

	claimed := billing.NewLicenceSupplementaryYear(licenceID, 2023, true)
	claimed.BillRunID = &billRunID
	otherClaimed := billing.NewLicenceSupplementaryYear(otherLicenceID, 2023, true)
	otherClaimed.BillRunID = &billRunID

	require.NoError(t, repo.CreateBatch(ctx, []*billing.LicenceSupplementaryYear{
		billing.NewLicenceSupplementaryYear(licenceID, 2024, true),
		billing.NewLicenceSupplementaryYear(licenceID, 2025, false),
		claimed,
		otherClaimed,
	}))

	t.Run("finds only unclaimed years of the requested kind", func(t *testing.T) {
		years, err := repo.FindUnclaimedYears(ctx, licenceID, []int{2023, 2024, 2025}, true)

		require.NoError(t, err)
		assert.Equal(t, []int{2024}, years)
	})

	t.Run("no years requested finds nothing", func(t *testing.T) {
		years, err := repo.FindUnclaimedYears(ctx, licenceID, nil, true)

		require.NoError(t, err)
		assert.Empty(t, years)
	})

	t.Run("duplicate unclaimed year is skipped", func(t *testing.T) {
		require.NoError(t, repo.CreateBatch(ctx, []*billing.LicenceSupplementaryYear{
			billing.NewLicenceSupplementaryYear(licenceID, 2024, true),
		}))

		var count int64
		require.NoError(t, db.Model(&models.LicenceSupplementaryYearModel{}).
			Where("licence_id = ? AND financial_year_end = ? AND bill_run_id IS NULL", licenceID, 2024).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)

		duplicate := models.LicenceSupplementaryYearModelFromDomain(billing.NewLicenceSupplementaryYear(licenceID, 2024, true))
		assert.Error(t, db.Create(duplicate).Error)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.CreateBatch(ctx, nil))
	})

	t.Run("unassigning releases only the given licences' years", func(t *testing.T) {
		released, err := repo.UnassignFromBillRun(ctx, billRunID, []uuid.UUID{licenceID})

		require.NoError(t, err)
		assert.Equal(t, int64(1), released)

		years, err := repo.FindUnclaimedYears(ctx, licenceID, []int{2023}, true)
		require.NoError(t, err)
		assert.Equal(t, []int{2023}, years)

		var other models.LicenceSupplementaryYearModel
		require.NoError(t, db.First(&other, "id = ?", otherClaimed.ID).Error)
		require.NotNil(t, other.BillRunID)
		assert.Equal(t, billRunID, *other.BillRunID)
	})

	t.Run("unassigning without licences is a no-op", func(t *testing.T) {
		released, err := repo.UnassignFromBillRun(ctx, billRunID, nil)

		require.NoError(t, err)
		assert.Zero(t, released)
	})
}

func TestGormLicenceSupplementaryYearRepository_UnassignYearFlaggedAgain(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLicenceSupplementaryYearRepository(db)
	ctx := context.Background()

	licence := createLicence(t, db, uuid.New(), "01/REFLAG", date(2010, time.April, 1))
	billRunID := uuid.New()

	claimed := make([]*billing.LicenceSupplementaryYear, 0, 2)
	for _, year := range []int{2024, 2025} {
		y := billing.NewLicenceSupplementaryYear(licence.ID, year, true)
		y.BillRunID = &billRunID
		claimed = append(claimed, y)
	}
	require.NoError(t, repo.CreateBatch(ctx, claimed))

	// a later trigger flags 2024 again while the bill run still holds it
	persister := supplementary.NewPersistSupplementaryBillingFlagsService(NewGormLicenceRepository(db), repo, zap.NewNop())
	require.NoError(t, persister.Go(ctx, []int{2024}, false, false, licence.ID))

	released, err := repo.UnassignFromBillRun(ctx, billRunID, []uuid.UUID{licence.ID})

	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	years, err := repo.FindUnclaimedYears(ctx, licence.ID, []int{2024, 2025}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025}, years)

	var stillClaimed int64
	require.NoError(t, db.Model(&models.LicenceSupplementaryYearModel{}).
		Where("bill_run_id = ?", billRunID).
		Count(&stillClaimed).Error)
	assert.Zero(t, stillClaimed)
	assert.Equal(t, []int{2024, 2025}, supplementaryYears(t, db, licence.ID))
}
