package supplementary

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
	"github.com/wrls/backend/internal/domain/shared"
)

var fixedNow = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// mockChargeVersionRepo is a mock implementation of licensing.ChargeVersionRepository
type mockChargeVersionRepo struct {
	mock.Mock
}

func (m *mockChargeVersionRepo) FindWithLicenceAndReferences(ctx context.Context, id uuid.UUID) (*licensing.ChargeVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.ChargeVersion), args.Error(1)
}

func (m *mockChargeVersionRepo) FindByLicence(ctx context.Context, licenceID uuid.UUID) ([]licensing.ChargeVersion, error) {
	args := m.Called(ctx, licenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]licensing.ChargeVersion), args.Error(1)
}

// mockReturnLogRepo is a mock implementation of licensing.ReturnLogRepository
type mockReturnLogRepo struct {
	mock.Mock
}

func (m *mockReturnLogRepo) FindWithLicence(ctx context.Context, id string) (*licensing.ReturnLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.ReturnLog), args.Error(1)
}

// mockWorkflowRepo is a mock implementation of licensing.WorkflowRepository
type mockWorkflowRepo struct {
	mock.Mock
}

func (m *mockWorkflowRepo) FindWithLicence(ctx context.Context, id uuid.UUID) (*licensing.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.Workflow), args.Error(1)
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

// memoryLicenceRepo keeps licences in memory and applies flag updates the way
// the database does
type memoryLicenceRepo struct {
	mu       sync.Mutex
	licences map[uuid.UUID]*licensing.Licence
	updates  int
}

func newMemoryLicenceRepo(licences ...*licensing.Licence) *memoryLicenceRepo {
	repo := &memoryLicenceRepo{licences: make(map[uuid.UUID]*licensing.Licence)}
	for _, l := range licences {
		repo.licences[l.ID] = l
	}
	return repo
}

func (r *memoryLicenceRepo) FindByID(_ context.Context, id uuid.UUID) (*licensing.Licence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	licence, ok := r.licences[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *licence
	return &copied, nil
}

func (r *memoryLicenceRepo) UpdateSupplementaryFlags(_ context.Context, id uuid.UUID, update licensing.LicenceFlagUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	licence, ok := r.licences[id]
	if !ok {
		return shared.ErrNotFound
	}
	r.updates++
	if update.PreSroc {
		licence.IncludeInPresrocBilling = licensing.PresrocBillingYes
	}
	if update.Sroc {
		licence.IncludeInSrocBilling = true
	}
	return nil
}

// memoryYearRepo keeps licence supplementary years in memory
type memoryYearRepo struct {
	mu    sync.Mutex
	rows  []*billing.LicenceSupplementaryYear
	calls int
}

func (r *memoryYearRepo) FindUnclaimedYears(_ context.Context, licenceID uuid.UUID, years []int, twoPartTariff bool) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []int
	for _, row := range r.rows {
		if row.LicenceID == licenceID && row.TwoPartTariff == twoPartTariff && row.BillRunID == nil && slices.Contains(years, row.FinancialYearEnd) {
			found = append(found, row.FinancialYearEnd)
		}
	}
	return found, nil
}

func (r *memoryYearRepo) CreateBatch(_ context.Context, years []*billing.LicenceSupplementaryYear) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.rows = append(r.rows, years...)
	return nil
}

func (r *memoryYearRepo) UnassignFromBillRun(_ context.Context, billRunID uuid.UUID, licenceIDs []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.BillRunID != nil && *row.BillRunID == billRunID && slices.Contains(licenceIDs, row.LicenceID) {
			row.BillRunID = nil
			count++
		}
	}
	return count, nil
}

// recordingNotifier captures notifier calls
type recordingNotifier struct {
	mu    sync.Mutex
	omgs  []string
	omfgs []omfgCall
}

type omfgCall struct {
	message string
	data    any
	err     error
}

func (n *recordingNotifier) Omg(message string, _ map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.omgs = append(n.omgs, message)
}

func (n *recordingNotifier) Omfg(message string, data any, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.omfgs = append(n.omfgs, omfgCall{message: message, data: data, err: err})
}

// recordingMetrics captures metric calls
type recordingMetrics struct {
	processed []string
	failures  []string
}

func (m *recordingMetrics) RecordProcessed(_ context.Context, trigger string, _ time.Duration) {
	m.processed = append(m.processed, trigger)
}

func (m *recordingMetrics) RecordFailure(_ context.Context, trigger string) {
	m.failures = append(m.failures, trigger)
}
