package finance

import (
	"context"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows customer invoice listings
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     PaymentStatus
}

// CustomerInvoiceRepository persists customer invoices together with their items
type CustomerInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerInvoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CustomerInvoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]CustomerInvoice, int64, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	// Save upserts the invoice and replaces its item rows
	Save(ctx context.Context, invoice *CustomerInvoice) error
}

// PaymentRepository persists customer payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	Create(ctx context.Context, payment *Payment) error
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierInvoiceFilter narrows supplier invoice listings
type SupplierInvoiceFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     SupplierInvoiceStatus
}

// SupplierInvoiceRepository persists supplier invoices
type SupplierInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierInvoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SupplierInvoice, error)
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*SupplierInvoice, error)
	FindAll(ctx context.Context, filter SupplierInvoiceFilter) ([]SupplierInvoice, int64, error)
	// FindPastDue returns unpaid, not yet overdue invoices with a due date before asOf
	FindPastDue(ctx context.Context, asOf time.Time) ([]SupplierInvoice, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, invoice *SupplierInvoice) error
}

// SupplierPaymentRepository persists supplier payments
type SupplierPaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierPayment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]SupplierPayment, error)
	Create(ctx context.Context, payment *SupplierPayment) error
	Save(ctx context.Context, payment *SupplierPayment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditNoteRepository persists credit notes and their applications
type CreditNoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	// FindByPurchaseReturn returns shared.ErrNotFound when the return has no note
	FindByPurchaseReturn(ctx context.Context, purchaseReturnID uuid.UUID) (*CreditNote, error)
	// FindExpiringBefore returns pending notes with an expiry date at or before t
	FindExpiringBefore(ctx context.Context, t time.Time) ([]CreditNote, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, note *CreditNote) error
	CreateApplication(ctx context.Context, app *CreditApplication) error
}
