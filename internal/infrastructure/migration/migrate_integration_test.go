//go:build integration

package migration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/infrastructure/persistence"
	"github.com/wrls/backend/internal/infrastructure/persistence/models"
	"github.com/wrls/backend/migrations"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("wrls_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestMigrator_EmbeddedMigrations(t *testing.T) {
	dsn := startPostgres(t)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := NewEmbedded(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)

	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	latest := uint(list[len(list)-1].Version)

	t.Run("up applies every migration", func(t *testing.T) {
		require.NoError(t, m.Up())

		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, latest, version)
		assert.False(t, dirty)
	})

	t.Run("up again is a no-op", func(t *testing.T) {
		assert.NoError(t, m.Up())
	})

	t.Run("schema matches the persistence models", func(t *testing.T) {
		db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
		require.NoError(t, err)
		ctx := context.Background()

		regionID := uuid.New()
		licence := &models.LicenceModel{
			BaseModel:  models.BaseModel{ID: uuid.New()},
			LicenceRef: "01/INT",
			RegionID:   regionID,
			StartDate:  time.Date(2015, time.April, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, db.Create(licence).Error)

		billRuns := persistence.NewGormBillRunRepository(db)
		billRun, err := billing.NewSupplementaryBillRun(regionID, 2025, "integration")
		require.NoError(t, err)
		require.NoError(t, billRuns.Create(ctx, billRun))
		require.NoError(t, billRuns.UpdateStatus(ctx, billRun.ID, billing.BillRunStatusSent))

		years, err := billRuns.FindExistingYears(ctx, billing.NewExistingBillRunFilter(regionID, 2023, false))
		require.NoError(t, err)
		assert.Equal(t, []int{2025}, years)

		supplementaryYears := persistence.NewGormLicenceSupplementaryYearRepository(db)
		row := billing.NewLicenceSupplementaryYear(licence.ID, 2025, true)
		require.NoError(t, supplementaryYears.CreateBatch(ctx, []*billing.LicenceSupplementaryYear{row}))
		// the unclaimed row exists, so the duplicate is skipped
		duplicate := billing.NewLicenceSupplementaryYear(licence.ID, 2025, true)
		require.NoError(t, supplementaryYears.CreateBatch(ctx, []*billing.LicenceSupplementaryYear{duplicate}))

		var count int64
		require.NoError(t, db.Model(&models.LicenceSupplementaryYearModel{}).Where("licence_id = ?", licence.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("down removes every table", func(t *testing.T) {
		require.NoError(t, m.Down())

		version, _, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, version)
	})
}
