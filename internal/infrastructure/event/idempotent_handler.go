package event

import (
	"context"
	"sync/atomic"

	"github.com/fixdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyStats is a snapshot of an IdempotentHandler's counters
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler wraps an inbound event handler so that a redelivered
// event id is acknowledged without running the handler again
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its id was already marked. A store
// failure lets the event through: processing twice is recoverable through
// the ledger, dropping it is not.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID().String()
	log := h.logger.With(
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType()),
	)

	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	switch {
	case err != nil:
		log.Warn("failed to check idempotency, processing anyway", zap.Error(err))
	case !isNew:
		h.duplicate.Add(1)
		log.Debug("duplicate event detected, skipping")
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		log.Error("event handler failed", zap.Error(err))
		if h.config.RetryOnFailure {
			if ferr := h.store.Forget(ctx, eventID); ferr != nil {
				log.Warn("failed to clear idempotency marker", zap.Error(ferr))
			}
		}
		return err
	}

	h.processed.Add(1)
	log.Debug("event processed")
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: h.processed.Load(),
		EventsDuplicate: h.duplicate.Load(),
		EventsFailed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// SubscribeIdempotent wraps each handler and subscribes it to the bus
func SubscribeIdempotent(bus shared.EventSubscriber, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger, handlers ...shared.EventHandler) []*IdempotentHandler {
	wrapped := make([]*IdempotentHandler, 0, len(handlers))
	for _, h := range handlers {
		ih := NewIdempotentHandler(h, store, config, logger)
		bus.Subscribe(ih)
		wrapped = append(wrapped, ih)
	}
	return wrapped
}
