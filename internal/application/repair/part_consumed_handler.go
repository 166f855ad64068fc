package repair

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/fixdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PartConsumer records ticket part usage
type PartConsumer interface {
	Consume(ctx context.Context, req ConsumePartRequest, actor string) (*UsageResponse, error)
}

// PartConsumedHandler books parts reported by the ticketing side
type PartConsumedHandler struct {
	usages PartConsumer
	logger *zap.Logger
}

// NewPartConsumedHandler creates a new handler for part consumed events
func NewPartConsumedHandler(usages PartConsumer, logger *zap.Logger) *PartConsumedHandler {
	return &PartConsumedHandler{usages: usages, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PartConsumedHandler) EventTypes() []string {
	return []string{repair.EventTypePartConsumed}
}

// Handle records the usage, which takes the parts out of stock
func (h *PartConsumedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*repair.PartConsumedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			repair.EventTypePartConsumed, event.EventType())
	}

	usage, err := h.usages.Consume(ctx, ConsumePartRequest{
		TicketID: e.TicketID,
		PartID:   e.PartID,
		Quantity: e.Quantity,
	}, e.Actor)
	if err != nil {
		h.logger.Error("failed to consume part from event",
			zap.String("event_id", e.EventID().String()),
			zap.String("ticket_id", e.TicketID.String()),
			zap.String("part_id", e.PartID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to consume part %s for ticket %s: %w", e.PartID, e.TicketID, err)
	}

	h.logger.Info("part consumed from event",
		zap.String("usage_id", usage.ID.String()),
		zap.Int("stock_after", usage.StockAfter),
	)
	return nil
}

var _ shared.EventHandler = (*PartConsumedHandler)(nil)
