package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSupplierInvoice is the aggregate type name for supplier invoices
const AggregateTypeSupplierInvoice = "SupplierInvoice"

// SupplierInvoiceStatus is the payable state of a supplier invoice
type SupplierInvoiceStatus string

const (
	SupplierInvoiceStatusPending SupplierInvoiceStatus = "pending"
	SupplierInvoiceStatusPartial SupplierInvoiceStatus = "partial"
	SupplierInvoiceStatusPaid    SupplierInvoiceStatus = "paid"
	SupplierInvoiceStatusOverdue SupplierInvoiceStatus = "overdue"
)

// IsValid checks if the status is a valid SupplierInvoiceStatus
func (s SupplierInvoiceStatus) IsValid() bool {
	switch s {
	case SupplierInvoiceStatusPending, SupplierInvoiceStatusPartial,
		SupplierInvoiceStatusPaid, SupplierInvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of SupplierInvoiceStatus
func (s SupplierInvoiceStatus) String() string {
	return string(s)
}

// SupplierInvoice is an account payable. PaidAmount is accumulated one
// mutation at a time; it is never recomputed from the payment rows.
type SupplierInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string
	SupplierID      uuid.UUID
	PurchaseOrderID *uuid.UUID
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	Status          SupplierInvoiceStatus
	DueDate         *time.Time
	Notes           string
}

// NewSupplierInvoice creates a pending invoice with nothing paid
func NewSupplierInvoice(number string, supplierID uuid.UUID, purchaseOrderID *uuid.UUID, total decimal.Decimal, dueDate *time.Time) (*SupplierInvoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Invoice total must be positive")
	}
	return &SupplierInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     number,
		SupplierID:        supplierID,
		PurchaseOrderID:   purchaseOrderID,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		Status:            SupplierInvoiceStatusPending,
		DueDate:           dueDate,
	}, nil
}

// Outstanding returns TotalAmount - PaidAmount
func (s *SupplierInvoice) Outstanding() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// ApplyPaymentDelta adds diff (which may be negative when a payment shrinks
// or is deleted) to PaidAmount and settles the status.
func (s *SupplierInvoice) ApplyPaymentDelta(diff decimal.Decimal, now time.Time) error {
	if diff.IsZero() {
		return nil
	}
	paid := s.PaidAmount.Add(diff)
	if paid.IsNegative() {
		return shared.NewValidationError("NEGATIVE_PAID_AMOUNT",
			fmt.Sprintf("Paid amount of invoice %s cannot go below zero", s.InvoiceNumber))
	}
	s.PaidAmount = paid
	s.settleStatus(now)
	s.IncrementVersion()
	return nil
}

// ApplyCredit consumes supplier credit against this invoice. The amount may
// not exceed what is still outstanding.
func (s *SupplierInvoice) ApplyCredit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return shared.ErrNonPositiveAmount
	}
	if amount.GreaterThan(s.Outstanding()) {
		return shared.NewValidationError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Credit %s exceeds outstanding balance %s", amount, s.Outstanding()))
	}
	return s.ApplyPaymentDelta(amount, now)
}

// settleStatus sets the status after a change of PaidAmount. A past-due
// invoice stays overdue until it is fully paid.
func (s *SupplierInvoice) settleStatus(now time.Time) {
	switch {
	case s.PaidAmount.GreaterThanOrEqual(s.TotalAmount):
		s.Status = SupplierInvoiceStatusPaid
	case s.isPastDue(now):
		s.Status = SupplierInvoiceStatusOverdue
	case s.PaidAmount.IsPositive():
		s.Status = SupplierInvoiceStatusPartial
	default:
		s.Status = SupplierInvoiceStatusPending
	}
}

func (s *SupplierInvoice) isPastDue(now time.Time) bool {
	return s.DueDate != nil && s.DueDate.Before(now)
}

// MarkOverdue flags an unpaid past-due invoice. It reports whether the
// status changed.
func (s *SupplierInvoice) MarkOverdue(now time.Time) bool {
	if s.Status == SupplierInvoiceStatusPaid || s.Status == SupplierInvoiceStatusOverdue {
		return false
	}
	if !s.isPastDue(now) {
		return false
	}
	s.Status = SupplierInvoiceStatusOverdue
	s.IncrementVersion()
	return true
}

// AuditSnapshot returns the fields recorded in audit entries
func (s *SupplierInvoice) AuditSnapshot() map[string]any {
	return map[string]any{
		"invoice_number": s.InvoiceNumber,
		"total_amount":   s.TotalAmount.String(),
		"paid_amount":    s.PaidAmount.String(),
		"status":         string(s.Status),
	}
}

// SupplierPayment is money paid against a supplier invoice
type SupplierPayment struct {
	shared.BaseEntity
	SupplierInvoiceID uuid.UUID
	Amount            decimal.Decimal
	Method            PaymentMethod
	PaidAt            time.Time
	Reference         string
	RecordedBy        string
}

// NewSupplierPayment validates and builds a supplier payment
func NewSupplierPayment(invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, reference, recordedBy string) (*SupplierPayment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if err := validatePayment(amount, method); err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &SupplierPayment{
		BaseEntity:        shared.NewBaseEntity(),
		SupplierInvoiceID: invoiceID,
		Amount:            amount,
		Method:            method,
		PaidAt:            paidAt,
		Reference:         reference,
		RecordedBy:        recordedBy,
	}, nil
}

// ChangeAmount replaces the amount and returns new - old, the only value
// that may be applied to the invoice's PaidAmount.
func (p *SupplierPayment) ChangeAmount(amount decimal.Decimal, method PaymentMethod, paidAt time.Time, reference string) (decimal.Decimal, error) {
	if err := validatePayment(amount, method); err != nil {
		return decimal.Zero, err
	}
	diff := amount.Sub(p.Amount)
	p.Amount = amount
	p.Method = method
	if !paidAt.IsZero() {
		p.PaidAt = paidAt
	}
	p.Reference = reference
	p.Touch()
	return diff, nil
}

// AuditSnapshot returns the fields recorded in audit entries
func (p *SupplierPayment) AuditSnapshot() map[string]any {
	return map[string]any{
		"supplier_invoice_id": p.SupplierInvoiceID.String(),
		"amount":              p.Amount.String(),
		"method":              string(p.Method),
		"paid_at":             p.PaidAt.Format(time.RFC3339),
	}
}
