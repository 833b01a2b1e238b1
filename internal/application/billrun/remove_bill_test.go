package billrun

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type removeFixture struct {
	billRunRepo *mockBillRunRepo
	billRepo    *mockBillRepo
	yearRepo    *mockYearRepo
	persister   *mockPersister
	notifier    *recordingNotifier
}

func newRemoveFixture() *removeFixture {
	return &removeFixture{
		billRunRepo: new(mockBillRunRepo),
		billRepo:    new(mockBillRepo),
		yearRepo:    new(mockYearRepo),
		persister:   new(mockPersister),
		notifier:    &recordingNotifier{},
	}
}

func (f *removeFixture) billService() *RemoveBillService {
	return NewRemoveBillService(f.billRunRepo, f.billRepo, f.yearRepo, f.persister, f.notifier, zap.NewNop())
}

func (f *removeFixture) billLicenceService() *RemoveBillLicenceService {
	return NewRemoveBillLicenceService(f.billRunRepo, f.billRepo, f.yearRepo, f.persister, f.notifier, zap.NewNop())
}

func newBillRun(scheme billing.Scheme, batchType billing.BatchType, status billing.BillRunStatus) *billing.BillRun {
	return &billing.BillRun{
		BaseEntity: shared.NewBaseEntity(),
		RegionID:   uuid.New(),
		Scheme:     scheme,
		BatchType:  batchType,
		Status:     status,
	}
}

func newBill(billRunID uuid.UUID, licenceIDs ...uuid.UUID) *billing.Bill {
	bill := &billing.Bill{BaseEntity: shared.NewBaseEntity(), BillRunID: billRunID}
	for _, id := range licenceIDs {
		bill.BillLicences = append(bill.BillLicences, billing.BillLicence{ID: uuid.New(), BillID: bill.ID, LicenceID: id})
	}
	return bill
}

func TestRemoveBillService(t *testing.T) {
	ctx := context.Background()

	t.Run("sroc supplementary removal re-flags licences for SROC", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeSroc, billing.BatchTypeSupplementary, billing.BillRunStatusReady)
		licenceA, licenceB := uuid.New(), uuid.New()
		bill := newBill(billRun.ID, licenceA, licenceB)

		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)
		f.billRepo.On("DeleteBill", ctx, bill.ID).Return(nil)
		f.billRepo.On("CountByBillRun", ctx, billRun.ID).Return(int64(3), nil)
		f.persister.On("Go", ctx, []int(nil), false, true, licenceA).Return(nil)
		f.persister.On("Go", ctx, []int(nil), false, true, licenceB).Return(nil)

		require.NoError(t, f.billService().Go(ctx, bill.ID))

		f.persister.AssertExpectations(t)
		f.billRunRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.notifier.omfgs)
	})

	t.Run("removing the last bill empties the bill run", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeAlcs, billing.BatchTypeAnnual, billing.BillRunStatusReady)
		licenceID := uuid.New()
		bill := newBill(billRun.ID, licenceID)

		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)
		f.billRepo.On("DeleteBill", ctx, bill.ID).Return(nil)
		f.billRepo.On("CountByBillRun", ctx, billRun.ID).Return(int64(0), nil)
		f.billRunRepo.On("UpdateStatus", ctx, billRun.ID, billing.BillRunStatusEmpty).Return(nil)
		f.persister.On("Go", ctx, []int(nil), true, false, licenceID).Return(nil)

		require.NoError(t, f.billService().Go(ctx, bill.ID))

		assert.Equal(t, billing.BillRunStatusEmpty, billRun.Status)
		f.billRunRepo.AssertExpectations(t)
		f.persister.AssertExpectations(t)
	})

	t.Run("two-part tariff removal unassigns supplementary years", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeSroc, billing.BatchTypeTwoPartTariff, billing.BillRunStatusReview)
		licenceID := uuid.New()
		bill := newBill(billRun.ID, licenceID)

		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)
		f.billRepo.On("DeleteBill", ctx, bill.ID).Return(nil)
		f.billRepo.On("CountByBillRun", ctx, billRun.ID).Return(int64(1), nil)
		f.yearRepo.On("UnassignFromBillRun", ctx, billRun.ID, []uuid.UUID{licenceID}).Return(int64(2), nil)

		require.NoError(t, f.billService().Go(ctx, bill.ID))

		f.yearRepo.AssertExpectations(t)
		f.persister.AssertNotCalled(t, "Go", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("flagging failure does not fail the removal", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeSroc, billing.BatchTypeTwoPartTariff, billing.BillRunStatusReview)
		bill := newBill(billRun.ID, uuid.New())
		flagErr := errors.New("deadlock detected")

		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)
		f.billRepo.On("DeleteBill", ctx, bill.ID).Return(nil)
		f.billRepo.On("CountByBillRun", ctx, billRun.ID).Return(int64(1), nil)
		f.yearRepo.On("UnassignFromBillRun", ctx, billRun.ID, mock.Anything).Return(int64(0), flagErr)

		require.NoError(t, f.billService().Go(ctx, bill.ID))

		require.Len(t, f.notifier.omfgs, 1)
		assert.ErrorIs(t, f.notifier.omfgs[0], flagErr)
	})

	t.Run("sent bill runs cannot be changed", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeSroc, billing.BatchTypeAnnual, billing.BillRunStatusSent)
		bill := newBill(billRun.ID, uuid.New())

		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)

		err := f.billService().Go(ctx, bill.ID)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.billRepo.AssertNotCalled(t, "DeleteBill", mock.Anything, mock.Anything)
	})

	t.Run("missing bill is not found", func(t *testing.T) {
		f := newRemoveFixture()
		id := uuid.New()
		f.billRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, f.billService().Go(ctx, id), shared.ErrNotFound)
	})
}

func TestRemoveBillLicenceService(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the bill licence and re-flags its licence", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeSroc, billing.BatchTypeSupplementary, billing.BillRunStatusReady)
		licenceID := uuid.New()
		bill := newBill(billRun.ID, licenceID, uuid.New())
		billLicence := bill.BillLicences[0]

		f.billRepo.On("FindBillLicenceByID", ctx, billLicence.ID).Return(&billLicence, nil)
		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)
		f.billRepo.On("DeleteBillLicence", ctx, billLicence.ID).Return(false, nil)
		f.persister.On("Go", ctx, []int(nil), false, true, licenceID).Return(nil)

		require.NoError(t, f.billLicenceService().Go(ctx, billLicence.ID))

		f.persister.AssertExpectations(t)
		f.billRepo.AssertNotCalled(t, "CountByBillRun", mock.Anything, mock.Anything)
	})

	t.Run("removing the last licence of the last bill empties the bill run", func(t *testing.T) {
		f := newRemoveFixture()
		billRun := newBillRun(billing.SchemeSroc, billing.BatchTypeTwoPartTariff, billing.BillRunStatusReview)
		licenceID := uuid.New()
		bill := newBill(billRun.ID, licenceID)
		billLicence := bill.BillLicences[0]

		f.billRepo.On("FindBillLicenceByID", ctx, billLicence.ID).Return(&billLicence, nil)
		f.billRepo.On("FindByID", ctx, bill.ID).Return(bill, nil)
		f.billRunRepo.On("FindByID", ctx, billRun.ID).Return(billRun, nil)
		f.billRepo.On("DeleteBillLicence", ctx, billLicence.ID).Return(true, nil)
		f.billRepo.On("CountByBillRun", ctx, billRun.ID).Return(int64(0), nil)
		f.billRunRepo.On("UpdateStatus", ctx, billRun.ID, billing.BillRunStatusEmpty).Return(nil)
		f.yearRepo.On("UnassignFromBillRun", ctx, billRun.ID, []uuid.UUID{licenceID}).Return(int64(1), nil)

		require.NoError(t, f.billLicenceService().Go(ctx, billLicence.ID))

		assert.Equal(t, billing.BillRunStatusEmpty, billRun.Status)
		f.yearRepo.AssertExpectations(t)
	})
}
