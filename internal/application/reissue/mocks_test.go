package reissue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/shared"
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

// mockReissuer is a mock implementation of BillReissuer
type mockReissuer struct {
	mock.Mock
}

func (m *mockReissuer) Go(ctx context.Context, billRun *billing.BillRun) (bool, error) {
	args := m.Called(ctx, billRun)
	return args.Bool(0), args.Error(1)
}

// memoryLocker hands out locks held in memory
type memoryLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	obtained []string
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) Obtain(_ context.Context, key string, _ time.Duration) (shared.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, shared.ErrLocked
	}
	l.held[key] = true
	l.obtained = append(l.obtained, key)
	return &memoryLock{locker: l, key: key}, nil
}

type memoryLock struct {
	locker *memoryLocker
	key    string
}

func (l *memoryLock) Release(context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.key)
	return nil
}

// recordingNotifier captures notifier calls
type recordingNotifier struct {
	omgs  []string
	omfgs []error
}

func (n *recordingNotifier) Omg(message string, _ map[string]any) {
	n.omgs = append(n.omgs, message)
}

func (n *recordingNotifier) Omfg(_ string, _ any, err error) {
	n.omfgs = append(n.omfgs, err)
}
