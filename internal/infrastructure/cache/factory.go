package cache

import (
	"context"
	"fmt"

	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory locker
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateLocker returns a Redis locker when Redis is enabled and reachable,
// otherwise an in-memory locker if fallback is allowed. The returned close
// function releases the Redis connection and is never nil.
func (f *LockerFactory) CreateLocker(ctx context.Context) (shared.Locker, func() error, error) {
	noop := func() error { return nil }

	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory locker")
		return NewInMemoryLocker(), noop, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis locker", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisLocker(client, ""), client.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, noop, fmt.Errorf("Redis required for locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory locker. "+
		"Reissue runs are then only serialised within this instance.",
		zap.Error(err),
	)
	return NewInMemoryLocker(), noop, nil
}
