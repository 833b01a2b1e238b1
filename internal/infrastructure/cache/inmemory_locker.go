package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/shared"
)

// InMemoryLocker implements shared.Locker within a single process.
// It is suitable for single-instance deployments and testing.
type InMemoryLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	clock func() time.Time
}

type heldLock struct {
	token     uuid.UUID
	expiresAt time.Time
}

// NewInMemoryLocker creates a new in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		held:  make(map[string]heldLock),
		clock: time.Now,
	}
}

// Obtain takes the lock for key. An expired lock can be taken over.
func (l *InMemoryLocker) Obtain(_ context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if existing, ok := l.held[key]; ok && now.Before(existing.expiresAt) {
		return nil, shared.ErrLocked
	}

	token := uuid.New()
	l.held[key] = heldLock{token: token, expiresAt: now.Add(ttl)}
	return &inMemoryLock{locker: l, key: key, token: token}, nil
}

// Held returns the number of unexpired locks (for testing/monitoring)
func (l *InMemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	count := 0
	for _, h := range l.held {
		if now.Before(h.expiresAt) {
			count++
		}
	}
	return count
}

type inMemoryLock struct {
	locker *InMemoryLocker
	key    string
	token  uuid.UUID
}

// Release gives the lock up unless another holder has taken it over
func (l *inMemoryLock) Release(context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	if current, ok := l.locker.held[l.key]; ok && current.token == l.token {
		delete(l.locker.held, l.key)
	}
	return nil
}

var _ shared.Locker = (*InMemoryLocker)(nil)
