package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderReceiver books the receipt of a purchase order
type OrderReceiver interface {
	MarkReceived(ctx context.Context, orderID uuid.UUID, actor string, openInvoice bool) (*ReceiveResultResponse, error)
}

// PurchaseOrderReceivedHandler handles PurchaseOrderReceivedEvent
// and books the received goods into stock
type PurchaseOrderReceivedHandler struct {
	orders OrderReceiver
	logger *zap.Logger
}

// NewPurchaseOrderReceivedHandler creates a new handler for purchase order received events
func NewPurchaseOrderReceivedHandler(orders OrderReceiver, logger *zap.Logger) *PurchaseOrderReceivedHandler {
	return &PurchaseOrderReceivedHandler{
		orders: orders,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseOrderReceivedHandler) EventTypes() []string {
	return []string{trade.EventTypePurchaseOrderReceived}
}

// Handle processes a PurchaseOrderReceivedEvent. An order that is already
// received counts as processed.
func (h *PurchaseOrderReceivedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	receivedEvent, ok := event.(*trade.PurchaseOrderReceivedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypePurchaseOrderReceived),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypePurchaseOrderReceived, event.EventType())
	}

	result, err := h.orders.MarkReceived(ctx, receivedEvent.PurchaseOrderID, receivedEvent.Actor, receivedEvent.OpenInvoice)
	if errors.Is(err, shared.ErrInvalidState) {
		h.logger.Warn("purchase order not receivable, skipping",
			zap.String("order_id", receivedEvent.PurchaseOrderID.String()),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		h.logger.Error("failed to receive purchase order",
			zap.String("order_id", receivedEvent.PurchaseOrderID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to receive purchase order %s: %w", receivedEvent.PurchaseOrderID, err)
	}

	h.logger.Info("purchase order received from event",
		zap.String("order_number", result.Order.OrderNumber),
		zap.Bool("invoice_opened", result.SupplierInvoice != nil),
	)
	return nil
}

var _ shared.EventHandler = (*PurchaseOrderReceivedHandler)(nil)
