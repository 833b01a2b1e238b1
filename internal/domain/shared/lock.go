package shared

import (
	"context"
	"time"
)

// Lock is a held distributed lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains distributed locks. Obtain returns ErrLocked when the key is
// already held.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
