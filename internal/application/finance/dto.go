package finance

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Customer Invoice DTOs ====================

// InvoiceItemInput is one billed line of a request
type InvoiceItemInput struct {
	Description string          `json:"description" validate:"required,max=500"`
	PartID      *uuid.UUID      `json:"part_id"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest opens a customer invoice. Subtotal is only used when
// no items are given.
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" validate:"required"`
	DeviceID   *uuid.UUID         `json:"device_id"`
	TicketID   *uuid.UUID         `json:"ticket_id"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Tax        decimal.Decimal    `json:"tax"`
	Discount   decimal.Decimal    `json:"discount"`
	DueDate    *time.Time         `json:"due_date"`
	Notes      string             `json:"notes" validate:"max=2000"`
	Items      []InvoiceItemInput `json:"items" validate:"dive"`
}

// RecordPaymentRequest books money received or paid out. A zero PaidAt
// means now.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=cash card bank_transfer mobile check other"`
	PaidAt    time.Time       `json:"paid_at"`
	Reference string          `json:"reference" validate:"max=100"`
}

// UpdatePaymentRequest replaces a payment's amount, method and date
type UpdatePaymentRequest = RecordPaymentRequest

// InvoiceListFilter is the query side of invoice listings
type InvoiceListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
}

func (f InvoiceListFilter) toDomain() finance.InvoiceFilter {
	base := shared.DefaultFilter()
	base.Page = f.Page
	base.PageSize = f.PageSize
	return finance.InvoiceFilter{
		Filter:     base.Normalize(),
		CustomerID: f.CustomerID,
		Status:     finance.PaymentStatus(f.Status),
	}
}

// InvoiceItemResponse is the read model of an invoice line
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	PartID      *uuid.UUID      `json:"part_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the read model of a customer invoice
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	DeviceID      *uuid.UUID            `json:"device_id,omitempty"`
	TicketID      *uuid.UUID            `json:"ticket_id,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Tax           decimal.Decimal       `json:"tax"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	PaymentStatus string                `json:"payment_status"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PaidDate      *time.Time            `json:"paid_date,omitempty"`
	Notes         string                `json:"notes"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
	Version       int                   `json:"version"`
}

// ToInvoiceResponse converts a domain invoice together with its paid sum
func ToInvoiceResponse(inv *finance.CustomerInvoice, paid decimal.Decimal) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			PartID:      item.PartID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		DeviceID:      inv.DeviceID,
		TicketID:      inv.TicketID,
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		Discount:      inv.Discount,
		Total:         inv.Total,
		PaidAmount:    paid,
		BalanceDue:    inv.BalanceDue(paid),
		PaymentStatus: string(inv.PaymentStatus),
		DueDate:       inv.DueDate,
		PaidDate:      inv.PaidDate,
		Notes:         inv.Notes,
		Items:         items,
		CreatedAt:     inv.CreatedAt,
		Version:       inv.Version,
	}
}

// PaymentResponse is the read model of a customer payment
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	PaidAt     time.Time       `json:"paid_at"`
	Reference  string          `json:"reference"`
	ReceivedBy string          `json:"received_by"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     string(p.Method),
		PaidAt:     p.PaidAt,
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
	}
}

// BalanceResponse summarises what is left to pay on an invoice
type BalanceResponse struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	PaymentStatus string          `json:"payment_status"`
	Overdue       bool            `json:"overdue"`
}

// ==================== Supplier Invoice DTOs ====================

// CreateSupplierInvoiceRequest registers an account payable. Without a due
// date the configured payment term applies.
type CreateSupplierInvoiceRequest struct {
	SupplierID      uuid.UUID       `json:"supplier_id" validate:"required"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DueDate         *time.Time      `json:"due_date"`
	Notes           string          `json:"notes" validate:"max=2000"`
}

// SupplierInvoiceListFilter is the query side of supplier invoice listings
type SupplierInvoiceListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status"`
}

func (f SupplierInvoiceListFilter) toDomain() finance.SupplierInvoiceFilter {
	base := shared.DefaultFilter()
	base.Page = f.Page
	base.PageSize = f.PageSize
	base.OrderBy = "due_date"
	base.OrderDir = "asc"
	return finance.SupplierInvoiceFilter{
		Filter:     base.Normalize(),
		SupplierID: f.SupplierID,
		Status:     finance.SupplierInvoiceStatus(f.Status),
	}
}

// SupplierInvoiceResponse is the read model of a supplier invoice
type SupplierInvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Status          string          `json:"status"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	Version         int             `json:"version"`
}

// ToSupplierInvoiceResponse converts a domain supplier invoice
func ToSupplierInvoiceResponse(inv *finance.SupplierInvoice) SupplierInvoiceResponse {
	return SupplierInvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SupplierID:      inv.SupplierID,
		PurchaseOrderID: inv.PurchaseOrderID,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		Outstanding:     inv.Outstanding(),
		Status:          string(inv.Status),
		DueDate:         inv.DueDate,
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt,
		Version:         inv.Version,
	}
}

// SupplierPaymentResponse is the read model of a supplier payment
type SupplierPaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	SupplierInvoiceID uuid.UUID       `json:"supplier_invoice_id"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	PaidAt            time.Time       `json:"paid_at"`
	Reference         string          `json:"reference"`
	RecordedBy        string          `json:"recorded_by"`
}

// ToSupplierPaymentResponse converts a domain supplier payment
func ToSupplierPaymentResponse(p *finance.SupplierPayment) SupplierPaymentResponse {
	return SupplierPaymentResponse{
		ID:                p.ID,
		SupplierInvoiceID: p.SupplierInvoiceID,
		Amount:            p.Amount,
		Method:            string(p.Method),
		PaidAt:            p.PaidAt,
		Reference:         p.Reference,
		RecordedBy:        p.RecordedBy,
	}
}

// OutstandingResponse is TotalAmount - PaidAmount of a supplier invoice
type OutstandingResponse struct {
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
}
