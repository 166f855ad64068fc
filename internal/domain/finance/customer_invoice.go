package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCustomerInvoice is the aggregate type name for customer invoices
const AggregateTypeCustomerInvoice = "CustomerInvoice"

// PaymentStatus is the settlement state of a customer invoice
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// InvoiceItem is one billed line. LineTotal is Quantity x UnitPrice.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	PartID      *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// NewInvoiceItem validates and builds a line
func NewInvoiceItem(description string, partID *uuid.UUID, quantity int, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewValidationError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Item unit price cannot be negative")
	}
	return &InvoiceItem{
		ID:          uuid.New(),
		PartID:      partID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// CustomerInvoice bills a customer for a repair. PaymentStatus is derived
// from the sum of the invoice's payments by ApplyPaidTotal.
type CustomerInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	CustomerID    uuid.UUID
	DeviceID      *uuid.UUID
	TicketID      *uuid.UUID
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus PaymentStatus
	DueDate       *time.Time
	PaidDate      *time.Time
	Notes         string
	Items         []InvoiceItem
}

// InvoiceTerms carries the amounts that are not derived from items
type InvoiceTerms struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	DueDate  *time.Time
	Notes    string
}

// NewCustomerInvoice creates an unpaid invoice. When items are supplied the
// subtotal is their sum and terms.Subtotal is ignored.
func NewCustomerInvoice(number string, customerID uuid.UUID, deviceID, ticketID *uuid.UUID, terms InvoiceTerms, items []InvoiceItem) (*CustomerInvoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if terms.Subtotal.IsNegative() || terms.Tax.IsNegative() || terms.Discount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Subtotal, tax and discount cannot be negative")
	}

	inv := &CustomerInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     number,
		CustomerID:        customerID,
		DeviceID:          deviceID,
		TicketID:          ticketID,
		Subtotal:          terms.Subtotal,
		Tax:               terms.Tax,
		Discount:          terms.Discount,
		PaymentStatus:     PaymentStatusUnpaid,
		DueDate:           terms.DueDate,
		Notes:             terms.Notes,
		Items:             make([]InvoiceItem, 0, len(items)),
	}
	for _, item := range items {
		item.InvoiceID = inv.ID
		inv.Items = append(inv.Items, item)
	}
	if err := inv.recalculateTotals(); err != nil {
		return nil, err
	}
	return inv, nil
}

// recalculateTotals sets Total = Subtotal + Tax - Discount, taking the
// subtotal from the items whenever there are any.
func (i *CustomerInvoice) recalculateTotals() error {
	if len(i.Items) > 0 {
		subtotal := decimal.Zero
		for _, item := range i.Items {
			subtotal = subtotal.Add(item.LineTotal)
		}
		i.Subtotal = subtotal
	}
	total := i.Subtotal.Add(i.Tax).Sub(i.Discount)
	if total.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT",
			fmt.Sprintf("Discount %s exceeds subtotal plus tax", i.Discount))
	}
	i.Total = total
	return nil
}

// AddItem appends a line and recomputes totals
func (i *CustomerInvoice) AddItem(item InvoiceItem) error {
	if i.PaymentStatus == PaymentStatusRefunded {
		return shared.NewInvalidStateError("INVOICE_REFUNDED", "Cannot modify a refunded invoice")
	}
	item.InvoiceID = i.ID
	i.Items = append(i.Items, item)
	if err := i.recalculateTotals(); err != nil {
		i.Items = i.Items[:len(i.Items)-1]
		return err
	}
	i.IncrementVersion()
	return nil
}

// RemoveItem drops a line and recomputes totals
func (i *CustomerInvoice) RemoveItem(itemID uuid.UUID) error {
	if i.PaymentStatus == PaymentStatusRefunded {
		return shared.NewInvalidStateError("INVOICE_REFUNDED", "Cannot modify a refunded invoice")
	}
	for idx, item := range i.Items {
		if item.ID != itemID {
			continue
		}
		previous := i.Items
		i.Items = append(append(make([]InvoiceItem, 0, len(previous)-1), previous[:idx]...), previous[idx+1:]...)
		if len(i.Items) == 0 {
			i.Subtotal = decimal.Zero
		}
		if err := i.recalculateTotals(); err != nil {
			i.Items = previous
			return err
		}
		i.IncrementVersion()
		return nil
	}
	return shared.NewNotFoundError("invoice item", itemID)
}

// BalanceDue returns Total minus the paid sum
func (i *CustomerInvoice) BalanceDue(paid decimal.Decimal) decimal.Decimal {
	return i.Total.Sub(paid)
}

// ApplyPaidTotal derives PaymentStatus from the sum of payments. It is a pure
// function of paid and Total apart from PaidDate, which is stamped with now
// only when it is not already set. Refunded invoices are left untouched.
// The return value reports whether anything changed.
func (i *CustomerInvoice) ApplyPaidTotal(paid decimal.Decimal, now time.Time) bool {
	if i.PaymentStatus == PaymentStatusRefunded {
		return false
	}

	status := i.PaymentStatus
	paidDate := i.PaidDate
	switch {
	case paid.GreaterThanOrEqual(i.Total):
		status = PaymentStatusPaid
		if paidDate == nil {
			stamp := now
			paidDate = &stamp
		}
	case paid.IsPositive():
		status = PaymentStatusPartiallyPaid
		paidDate = nil
	default:
		status = PaymentStatusUnpaid
		paidDate = nil
	}

	if status == i.PaymentStatus && samePaidDate(paidDate, i.PaidDate) {
		return false
	}
	i.PaymentStatus = status
	i.PaidDate = paidDate
	i.IncrementVersion()
	return true
}

func samePaidDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// MarkRefunded moves a paid invoice to the terminal refunded state
func (i *CustomerInvoice) MarkRefunded() error {
	if i.PaymentStatus != PaymentStatusPaid {
		return shared.NewInvalidStateError("INVALID_STATE",
			fmt.Sprintf("Cannot refund invoice in %s status", i.PaymentStatus))
	}
	i.PaymentStatus = PaymentStatusRefunded
	i.IncrementVersion()
	return nil
}

// IsOverdue reports whether the due date passed without full payment
func (i *CustomerInvoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil {
		return false
	}
	if i.PaymentStatus == PaymentStatusPaid || i.PaymentStatus == PaymentStatusRefunded {
		return false
	}
	return i.DueDate.Before(now)
}

// AuditSnapshot returns the fields recorded in audit entries
func (i *CustomerInvoice) AuditSnapshot() map[string]any {
	snap := map[string]any{
		"invoice_number": i.InvoiceNumber,
		"subtotal":       i.Subtotal.String(),
		"tax":            i.Tax.String(),
		"discount":       i.Discount.String(),
		"total":          i.Total.String(),
		"payment_status": string(i.PaymentStatus),
		"item_count":     len(i.Items),
	}
	if i.PaidDate != nil {
		snap["paid_date"] = i.PaidDate.Format(time.RFC3339)
	}
	return snap
}
