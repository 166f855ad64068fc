package finance

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRecorder books customer payments
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest, actor string) (*InvoiceResponse, error)
}

// PaymentRecordedHandler books payments reported by the till
type PaymentRecordedHandler struct {
	payments PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentRecordedHandler creates a new handler for payment recorded events
func NewPaymentRecordedHandler(payments PaymentRecorder, logger *zap.Logger) *PaymentRecordedHandler {
	return &PaymentRecordedHandler{
		payments: payments,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentRecordedHandler) EventTypes() []string {
	return []string{finance.EventTypePaymentRecorded}
}

// Handle records the payment and recomputes the invoice status
func (h *PaymentRecordedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*finance.PaymentRecordedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", finance.EventTypePaymentRecorded),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			finance.EventTypePaymentRecorded, event.EventType())
	}

	resp, err := h.payments.RecordPayment(ctx, e.InvoiceID, RecordPaymentRequest{
		Amount:    e.Amount,
		Method:    string(e.Method),
		PaidAt:    e.PaidAt,
		Reference: e.Reference,
	}, e.ReceivedBy)
	if err != nil {
		h.logger.Error("failed to record payment from event",
			zap.String("event_id", e.EventID().String()),
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to record payment for invoice %s: %w", e.InvoiceID, err)
	}

	h.logger.Info("payment recorded from event",
		zap.String("event_id", e.EventID().String()),
		zap.String("invoice_number", resp.InvoiceNumber),
		zap.String("payment_status", resp.PaymentStatus),
	)
	return nil
}

var _ shared.EventHandler = (*PaymentRecordedHandler)(nil)
