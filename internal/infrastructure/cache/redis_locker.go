package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/wrls/backend/internal/domain/shared"
)

const defaultLockPrefix = "wrls:lock:"

// RedisLocker implements shared.Locker with redislock, so a lock is held
// across every instance sharing the Redis server
type RedisLocker struct {
	client    *redislock.Client
	keyPrefix string
}

// NewRedisLocker creates a locker on an existing Redis client
func NewRedisLocker(client redis.UniversalClient, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisLocker{
		client:    redislock.New(client),
		keyPrefix: keyPrefix,
	}
}

// Obtain takes the lock for key without retrying. A key held elsewhere is
// shared.ErrLocked.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	lock, err := l.client.Obtain(ctx, l.keyPrefix+key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, shared.ErrLocked
		}
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release gives the lock up. A lock that has already expired is not an error.
func (l *redisLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

var _ shared.Locker = (*RedisLocker)(nil)
