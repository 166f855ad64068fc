package inventory

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockNotifier delivers low-stock alerts. Reorder and notification
// policy live behind it.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, event *inventory.StockBelowMinimumEvent) error
}

// LowStockHandler reacts to StockBelowMinimum events
type LowStockHandler struct {
	logger   *zap.Logger
	notifier LowStockNotifier
}

// NewLowStockHandler creates a handler that logs every alert
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// WithNotifier forwards alerts to n as well
func (h *LowStockHandler) WithNotifier(n LowStockNotifier) *LowStockHandler {
	h.notifier = n
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowMinimum}
}

// Handle logs the alert and hands it to the notifier. A notifier failure is
// logged and swallowed.
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowMinimumEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowMinimum, event.EventType())
	}

	alert := "low_stock"
	if e.CurrentStock <= 0 {
		alert = "out_of_stock"
	}
	h.logger.Warn("part stock below minimum",
		zap.String("alert", alert),
		zap.String("part_id", e.PartID.String()),
		zap.String("sku", e.SKU),
		zap.Int("current_stock", e.CurrentStock),
		zap.Int("min_stock_level", e.MinStockLevel),
	)

	if h.notifier != nil {
		if err := h.notifier.NotifyLowStock(ctx, e); err != nil {
			h.logger.Error("failed to send low stock alert",
				zap.String("part_id", e.PartID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
