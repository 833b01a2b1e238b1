package supplementary

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/shared"
)

// EventTypeFlagRequested is published when a licence change may need supplementary billing
const EventTypeFlagRequested = "SupplementaryBillingFlagRequested"

// FlagRequestedEvent carries a Payload to the flag handler
type FlagRequestedEvent struct {
	shared.BaseDomainEvent
	Payload Payload `json:"payload"`
}

// NewFlagRequestedEvent creates a new FlagRequestedEvent. The licence ID, when
// known, is used as the aggregate ID.
func NewFlagRequestedEvent(payload Payload) *FlagRequestedEvent {
	aggID := uuid.Nil
	if payload.LicenceID != nil {
		aggID = *payload.LicenceID
	}
	return &FlagRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFlagRequested, "Licence", aggID),
		Payload:         payload,
	}
}

// BillingFlagProcessor processes a billing flag payload
type BillingFlagProcessor interface {
	Go(ctx context.Context, payload Payload)
}

// FlagEventHandler forwards FlagRequestedEvents to the processor
type FlagEventHandler struct {
	processor BillingFlagProcessor
}

// NewFlagEventHandler creates a new FlagEventHandler
func NewFlagEventHandler(processor BillingFlagProcessor) *FlagEventHandler {
	return &FlagEventHandler{processor: processor}
}

// EventTypes returns the event types this handler is interested in
func (h *FlagEventHandler) EventTypes() []string {
	return []string{EventTypeFlagRequested}
}

// Handle processes a domain event
func (h *FlagEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*FlagRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	h.processor.Go(ctx, e.Payload)
	return nil
}

var _ shared.EventHandler = (*FlagEventHandler)(nil)
