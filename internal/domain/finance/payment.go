package finance

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobile       PaymentMethod = "mobile"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodMobile, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received against a customer invoice
type Payment struct {
	shared.BaseEntity
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	Method     PaymentMethod
	PaidAt     time.Time
	Reference  string
	ReceivedBy string
}

// NewPayment validates and builds a payment. A zero paidAt means now.
func NewPayment(invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, reference, receivedBy string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if err := validatePayment(amount, method); err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		Amount:     amount,
		Method:     method,
		PaidAt:     paidAt,
		Reference:  reference,
		ReceivedBy: receivedBy,
	}, nil
}

// Update changes the amount, method and date of a payment
func (p *Payment) Update(amount decimal.Decimal, method PaymentMethod, paidAt time.Time, reference string) error {
	if err := validatePayment(amount, method); err != nil {
		return err
	}
	p.Amount = amount
	p.Method = method
	if !paidAt.IsZero() {
		p.PaidAt = paidAt
	}
	p.Reference = reference
	p.Touch()
	return nil
}

// AuditSnapshot returns the fields recorded in audit entries
func (p *Payment) AuditSnapshot() map[string]any {
	return map[string]any{
		"invoice_id": p.InvoiceID.String(),
		"amount":     p.Amount.String(),
		"method":     string(p.Method),
		"paid_at":    p.PaidAt.Format(time.RFC3339),
		"reference":  p.Reference,
	}
}

func validatePayment(amount decimal.Decimal, method PaymentMethod) error {
	if !amount.IsPositive() {
		return shared.ErrNonPositiveAmount
	}
	if !method.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	return nil
}
