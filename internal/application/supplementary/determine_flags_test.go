package supplementary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
	"github.com/wrls/backend/internal/domain/shared"
)

func newLicence() *licensing.Licence {
	return &licensing.Licence{
		ID:         uuid.New(),
		LicenceRef: "01/120",
		RegionID:   uuid.New(),
		StartDate:  date(2015, time.April, 1),
	}
}

func srocReference(twoPartTariff bool) licensing.ChargeReference {
	return licensing.ChargeReference{ID: uuid.New(), Scheme: billing.SchemeSroc, TwoPartTariff: twoPartTariff}
}

func TestDetermineChargeVersionFlagsService(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, chargeVersion *licensing.ChargeVersion) *billing.FlagIntent {
		repo := new(mockChargeVersionRepo)
		repo.On("FindWithLicenceAndReferences", ctx, chargeVersion.ID).Return(chargeVersion, nil)

		intent, err := NewDetermineChargeVersionFlagsService(repo, clock).Go(ctx, chargeVersion.ID)
		require.NoError(t, err)
		repo.AssertExpectations(t)
		return intent
	}

	t.Run("alcs charge version flags pre-SROC regardless of references", func(t *testing.T) {
		for _, refs := range [][]licensing.ChargeReference{
			nil,
			{srocReference(true)},
			{{Scheme: billing.SchemeAlcs, TwoPartTariff: true}},
		} {
			intent := run(t, &licensing.ChargeVersion{
				ID:               uuid.New(),
				Scheme:           billing.SchemeAlcs,
				StartDate:        date(2019, time.April, 1),
				ChargeReferences: refs,
				Licence:          newLicence(),
			})

			require.NotNil(t, intent)
			assert.True(t, intent.Flags.PreSroc)
			assert.False(t, intent.Flags.Sroc)
			assert.False(t, intent.Flags.TwoPartTariff)
		}
	})

	t.Run("sroc two-part tariff reference raises two-part tariff only", func(t *testing.T) {
		intent := run(t, &licensing.ChargeVersion{
			ID:               uuid.New(),
			Scheme:           billing.SchemeSroc,
			StartDate:        date(2023, time.April, 1),
			ChargeReferences: []licensing.ChargeReference{srocReference(false), srocReference(true)},
			Licence:          newLicence(),
		})

		require.NotNil(t, intent)
		assert.False(t, intent.Flags.Sroc)
		assert.True(t, intent.Flags.TwoPartTariff)
		assert.False(t, intent.Flags.PreSroc)
	})

	t.Run("sroc without two-part tariff raises SROC", func(t *testing.T) {
		licence := newLicence()
		end := date(2024, time.March, 31)
		chargeVersion := &licensing.ChargeVersion{
			ID:               uuid.New(),
			Scheme:           billing.SchemeSroc,
			StartDate:        date(2023, time.April, 1),
			EndDate:          &end,
			ChargeReferences: []licensing.ChargeReference{srocReference(false)},
			Licence:          licence,
		}

		intent := run(t, chargeVersion)

		require.NotNil(t, intent)
		assert.Equal(t, billing.Flags{Sroc: true}, intent.Flags)
		assert.Equal(t, licence.ID, intent.LicenceID)
		assert.Equal(t, licence.RegionID, intent.RegionID)
		assert.Equal(t, chargeVersion.StartDate, intent.StartDate)
		assert.Equal(t, &end, intent.EndDate)
	})

	t.Run("persisted flags are never demoted", func(t *testing.T) {
		licence := newLicence()
		licence.IncludeInSrocBilling = true
		licence.IncludeInPresrocBilling = licensing.PresrocBillingYes

		intent := run(t, &licensing.ChargeVersion{
			ID:               uuid.New(),
			Scheme:           billing.SchemeSroc,
			StartDate:        date(2023, time.April, 1),
			ChargeReferences: []licensing.ChargeReference{srocReference(true)},
			Licence:          licence,
		})

		require.NotNil(t, intent)
		assert.True(t, intent.Flags.Sroc)
		assert.True(t, intent.Flags.PreSroc)
		assert.True(t, intent.Flags.TwoPartTariff)
	})

	t.Run("change starting after the current financial year is ignored", func(t *testing.T) {
		intent := run(t, &licensing.ChargeVersion{
			ID:        uuid.New(),
			Scheme:    billing.SchemeSroc,
			StartDate: date(2025, time.April, 1),
			Licence:   newLicence(),
		})

		assert.Nil(t, intent)
	})

	t.Run("fetch error is returned", func(t *testing.T) {
		id := uuid.New()
		repo := new(mockChargeVersionRepo)
		repo.On("FindWithLicenceAndReferences", ctx, id).Return(nil, shared.ErrNotFound)

		intent, err := NewDetermineChargeVersionFlagsService(repo, clock).Go(ctx, id)

		assert.Nil(t, intent)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestDetermineReturnLogFlagsService(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, returnLog *licensing.ReturnLog) *billing.FlagIntent {
		repo := new(mockReturnLogRepo)
		repo.On("FindWithLicence", ctx, returnLog.ID).Return(returnLog, nil)

		intent, err := NewDetermineReturnLogFlagsService(repo, clock).Go(ctx, returnLog.ID)
		require.NoError(t, err)
		return intent
	}

	t.Run("return spanning the SROC start raises pre-SROC and SROC", func(t *testing.T) {
		intent := run(t, &licensing.ReturnLog{
			ID:        "v1:1:01/120:1234:2021-11-01:2022-10-31",
			StartDate: date(2021, time.November, 1),
			EndDate:   date(2022, time.October, 31),
			Licence:   newLicence(),
		})

		require.NotNil(t, intent)
		assert.Equal(t, billing.Flags{PreSroc: true, Sroc: true}, intent.Flags)
		require.NotNil(t, intent.EndDate)
		assert.Equal(t, date(2022, time.October, 31), *intent.EndDate)
	})

	t.Run("two-part tariff return raises two-part tariff instead of SROC", func(t *testing.T) {
		intent := run(t, &licensing.ReturnLog{
			ID:            "v1:1:01/120:1234:2023-04-01:2024-03-31",
			StartDate:     date(2023, time.April, 1),
			EndDate:       date(2024, time.March, 31),
			TwoPartTariff: true,
			Licence:       newLicence(),
		})

		require.NotNil(t, intent)
		assert.Equal(t, billing.Flags{TwoPartTariff: true}, intent.Flags)
	})

	t.Run("return ending on the SROC start date is pre-SROC only", func(t *testing.T) {
		intent := run(t, &licensing.ReturnLog{
			ID:        "v1:1:01/120:1234:2021-04-01:2022-04-01",
			StartDate: date(2021, time.April, 1),
			EndDate:   billing.SrocStartDate,
			Licence:   newLicence(),
		})

		require.NotNil(t, intent)
		assert.Equal(t, billing.Flags{PreSroc: true}, intent.Flags)
	})

	t.Run("persisted SROC flag is kept", func(t *testing.T) {
		licence := newLicence()
		licence.IncludeInSrocBilling = true

		intent := run(t, &licensing.ReturnLog{
			ID:        "v1:1:01/120:1234:2019-04-01:2020-03-31",
			StartDate: date(2019, time.April, 1),
			EndDate:   date(2020, time.March, 31),
			Licence:   licence,
		})

		require.NotNil(t, intent)
		assert.True(t, intent.Flags.Sroc)
		assert.True(t, intent.Flags.PreSroc)
	})

	t.Run("future return is ignored", func(t *testing.T) {
		intent := run(t, &licensing.ReturnLog{
			ID:        "v1:1:01/120:1234:2026-04-01:2027-03-31",
			StartDate: date(2026, time.April, 1),
			EndDate:   date(2027, time.March, 31),
			Licence:   newLicence(),
		})

		assert.Nil(t, intent)
	})
}

func TestDetermineWorkflowFlagsService(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, workflow *licensing.Workflow) *billing.FlagIntent {
		repo := new(mockWorkflowRepo)
		repo.On("FindWithLicence", ctx, workflow.ID).Return(workflow, nil)

		intent, err := NewDetermineWorkflowFlagsService(repo, clock).Go(ctx, workflow.ID)
		require.NoError(t, err)
		return intent
	}

	t.Run("range starts at the SROC start date for older licences", func(t *testing.T) {
		licence := newLicence()
		intent := run(t, &licensing.Workflow{
			ID:      uuid.New(),
			Status:  licensing.WorkflowStatusToSetup,
			Licence: licence,
			ChargeVersions: []licensing.ChargeVersion{
				{Scheme: billing.SchemeAlcs},
				{Scheme: billing.SchemeSroc, ChargeReferences: []licensing.ChargeReference{srocReference(false)}},
			},
		})

		require.NotNil(t, intent)
		assert.Equal(t, billing.SrocStartDate, intent.StartDate)
		assert.Nil(t, intent.EndDate)
		assert.Equal(t, billing.Flags{Sroc: true}, intent.Flags)
	})

	t.Run("two-part tariff charge version raises two-part tariff", func(t *testing.T) {
		licence := newLicence()
		licence.StartDate = date(2023, time.June, 1)
		intent := run(t, &licensing.Workflow{
			ID:      uuid.New(),
			Licence: licence,
			ChargeVersions: []licensing.ChargeVersion{
				{Scheme: billing.SchemeSroc, ChargeReferences: []licensing.ChargeReference{srocReference(true)}},
			},
		})

		require.NotNil(t, intent)
		assert.Equal(t, licence.StartDate, intent.StartDate)
		assert.Equal(t, billing.Flags{TwoPartTariff: true}, intent.Flags)
	})

	t.Run("licence starting after the current financial year is ignored", func(t *testing.T) {
		licence := newLicence()
		licence.StartDate = date(2025, time.May, 1)

		assert.Nil(t, run(t, &licensing.Workflow{ID: uuid.New(), Licence: licence}))
	})

	t.Run("persisted pre-SROC flag is kept", func(t *testing.T) {
		licence := newLicence()
		licence.IncludeInPresrocBilling = licensing.PresrocBillingYes

		intent := run(t, &licensing.Workflow{ID: uuid.New(), Licence: licence})

		require.NotNil(t, intent)
		assert.Equal(t, billing.Flags{PreSroc: true}, intent.Flags)
	})
}

func TestDetermineImportedLicenceFlagsService(t *testing.T) {
	ctx := context.Background()

	setup := func(licence *licensing.Licence, chargeVersions []licensing.ChargeVersion) (*DetermineImportedLicenceFlagsService, *mockChargeVersionRepo) {
		chargeVersionRepo := new(mockChargeVersionRepo)
		chargeVersionRepo.On("FindByLicence", ctx, licence.ID).Return(chargeVersions, nil).Maybe()
		return NewDetermineImportedLicenceFlagsService(newMemoryLicenceRepo(licence), chargeVersionRepo, clock), chargeVersionRepo
	}

	t.Run("unchanged end dates are ignored", func(t *testing.T) {
		licence := newLicence()
		expired := date(2030, time.January, 1)
		licence.ExpiredDate = &expired
		service, chargeVersionRepo := setup(licence, nil)

		intent, err := service.Go(ctx, licence.ID, licensing.ImportedLicence{ExpiredDate: &expired})

		require.NoError(t, err)
		assert.Nil(t, intent)
		chargeVersionRepo.AssertNotCalled(t, "FindByLicence", mock.Anything, mock.Anything)
	})

	t.Run("pre-SROC revocation raises flags for every scheme the licence is charged under", func(t *testing.T) {
		licence := newLicence()
		revoked := date(2021, time.October, 1)
		service, _ := setup(licence, []licensing.ChargeVersion{
			{Scheme: billing.SchemeAlcs},
			{Scheme: billing.SchemeSroc, ChargeReferences: []licensing.ChargeReference{srocReference(false)}},
			{Scheme: billing.SchemeSroc, ChargeReferences: []licensing.ChargeReference{srocReference(true)}},
		})

		intent, err := service.Go(ctx, licence.ID, licensing.ImportedLicence{RevokedDate: &revoked})

		require.NoError(t, err)
		require.NotNil(t, intent)
		assert.Equal(t, revoked, intent.StartDate)
		assert.Nil(t, intent.EndDate)
		assert.Equal(t, billing.Flags{PreSroc: true, Sroc: true, TwoPartTariff: true}, intent.Flags)
	})

	t.Run("SROC era lapse does not raise pre-SROC", func(t *testing.T) {
		licence := newLicence()
		lapsed := date(2023, time.August, 1)
		service, _ := setup(licence, []licensing.ChargeVersion{{Scheme: billing.SchemeAlcs}})

		intent, err := service.Go(ctx, licence.ID, licensing.ImportedLicence{LapsedDate: &lapsed})

		require.NoError(t, err)
		require.NotNil(t, intent)
		assert.Equal(t, billing.Flags{}, intent.Flags)
	})

	t.Run("future expiry is ignored", func(t *testing.T) {
		licence := newLicence()
		expired := date(2027, time.January, 1)
		service, _ := setup(licence, nil)

		intent, err := service.Go(ctx, licence.ID, licensing.ImportedLicence{ExpiredDate: &expired})

		require.NoError(t, err)
		assert.Nil(t, intent)
	})

	t.Run("missing licence is an error", func(t *testing.T) {
		service, _ := setup(newLicence(), nil)

		_, err := service.Go(ctx, uuid.New(), licensing.ImportedLicence{})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
