package billrun

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wrls/backend/internal/domain/billing"
)

// mockBillRepo is a mock implementation of billing.BillRepository
type mockBillRepo struct {
	mock.Mock
}

func (m *mockBillRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *mockBillRepo) FindBillLicenceByID(ctx context.Context, id uuid.UUID) (*billing.BillLicence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillLicence), args.Error(1)
}

func (m *mockBillRepo) FindFlaggedForRebilling(ctx context.Context, regionID uuid.UUID) ([]*billing.Bill, error) {
	args := m.Called(ctx, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

func (m *mockBillRepo) FindRegionsWithFlaggedBills(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *mockBillRepo) SaveReissue(ctx context.Context, sets []*billing.ReissueSet) error {
	args := m.Called(ctx, sets)
	return args.Error(0)
}

func (m *mockBillRepo) DeleteBill(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBillRepo) DeleteBillLicence(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockBillRepo) CountFlaggedForRebilling(ctx context.Context, regionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, regionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBillRepo) CountByBillRun(ctx context.Context, billRunID uuid.UUID) (int64, error) {
	args := m.Called(ctx, billRunID)
	return args.Get(0).(int64), args.Error(1)
}

// mockBillRunRepo is a mock implementation of billing.BillRunRepository
type mockBillRunRepo struct {
	mock.Mock
}

func (m *mockBillRunRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillRun), args.Error(1)
}

func (m *mockBillRunRepo) FindExistingYears(ctx context.Context, filter billing.ExistingBillRunFilter) ([]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockBillRunRepo) Create(ctx context.Context, billRun *billing.BillRun) error {
	args := m.Called(ctx, billRun)
	return args.Error(0)
}

func (m *mockBillRunRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.BillRunStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// mockYearRepo is a mock implementation of billing.LicenceSupplementaryYearRepository
type mockYearRepo struct {
	mock.Mock
}

func (m *mockYearRepo) FindUnclaimedYears(ctx context.Context, licenceID uuid.UUID, years []int, twoPartTariff bool) ([]int, error) {
	args := m.Called(ctx, licenceID, years, twoPartTariff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockYearRepo) CreateBatch(ctx context.Context, years []*billing.LicenceSupplementaryYear) error {
	args := m.Called(ctx, years)
	return args.Error(0)
}

func (m *mockYearRepo) UnassignFromBillRun(ctx context.Context, billRunID uuid.UUID, licenceIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, billRunID, licenceIDs)
	return args.Get(0).(int64), args.Error(1)
}

// mockPersister is a mock implementation of supplementary.FlagPersister
type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) Go(ctx context.Context, twoPartTariffYears []int, preSroc, sroc bool, licenceID uuid.UUID) error {
	args := m.Called(ctx, twoPartTariffYears, preSroc, sroc, licenceID)
	return args.Error(0)
}

// recordingNotifier captures notifier error calls
type recordingNotifier struct {
	omfgs []error
}

func (n *recordingNotifier) Omg(string, map[string]any) {}

func (n *recordingNotifier) Omfg(_ string, _ any, err error) {
	n.omfgs = append(n.omfgs, err)
}
