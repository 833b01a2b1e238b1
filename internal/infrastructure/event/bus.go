package event

import (
	"context"
	"sync"

	"github.com/wrls/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches domain events to subscribed handlers in process.
//
// Before Start, and after Stop, events are dispatched synchronously on the
// publisher's goroutine. While the bus is running each handler call runs on
// its own goroutine so publishers never wait for billing work; Stop waits for
// those calls to drain.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	// mu orders wg.Add in Publish before wg.Wait in Stop
	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish hands every event to the handlers registered for its type. Handler
// failures are logged and never returned to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.registry.Handlers(event.EventType()) {
			if !b.dispatchAsync(ctx, handler, event) {
				b.dispatch(ctx, handler, event)
			}
		}
	}
	return nil
}

// dispatchAsync starts the handler call on its own goroutine and reports
// whether it did so. It refuses once Stop has begun.
func (b *InMemoryEventBus) dispatchAsync(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running {
		return false
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.dispatch(context.WithoutCancel(ctx), handler, event)
	}()
	return true
}

// Subscribe registers a handler. Without explicit event types the handler's
// own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("Handler unsubscribed")
}

// Start switches the bus to asynchronous dispatch
func (b *InMemoryEventBus) Start(context.Context) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	b.logger.Info("Event bus started")
	return nil
}

// Stop switches the bus back to synchronous dispatch and waits for in-flight
// handler calls, or for ctx to end
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus stopped with handlers still running")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("Event handler failed",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
