package finance

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypePaymentRecorded is delivered by the till when a customer pays
const EventTypePaymentRecorded = "finance.PaymentRecorded"

// PaymentRecordedEvent asks the engine to book a payment against an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	PaidAt     time.Time       `json:"paid_at"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedBy string          `json:"received_by"`
}

// NewPaymentRecordedEvent creates the event
func NewPaymentRecordedEvent(invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, receivedBy string) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeCustomerInvoice, invoiceID),
		InvoiceID:       invoiceID,
		Amount:          amount,
		Method:          method,
		PaidAt:          paidAt,
		ReceivedBy:      receivedBy,
	}
}
