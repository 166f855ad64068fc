package models

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerInvoiceModel is the persistence model for the CustomerInvoice aggregate root
type CustomerInvoiceModel struct {
	AggregateModel
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeviceID      *uuid.UUID      `gorm:"type:uuid;index"`
	TicketID      *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	DueDate       *time.Time
	PaidDate      *time.Time
	Notes         string             `gorm:"type:text"`
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (CustomerInvoiceModel) TableName() string {
	return "customer_invoices"
}

// ToDomain converts the persistence model to a domain CustomerInvoice
func (m *CustomerInvoiceModel) ToDomain() *finance.CustomerInvoice {
	inv := &finance.CustomerInvoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		CustomerID:        m.CustomerID,
		DeviceID:          m.DeviceID,
		TicketID:          m.TicketID,
		Subtotal:          m.Subtotal,
		Tax:               m.Tax,
		Discount:          m.Discount,
		Total:             m.Total,
		PaymentStatus:     finance.PaymentStatus(m.PaymentStatus),
		DueDate:           m.DueDate,
		PaidDate:          m.PaidDate,
		Notes:             m.Notes,
		Items:             make([]finance.InvoiceItem, len(m.Items)),
	}
	for i := range m.Items {
		inv.Items[i] = *m.Items[i].ToDomain()
	}
	return inv
}

// CustomerInvoiceModelFromDomain creates a persistence model from a domain
// invoice. Items are mapped but saved separately by the repository.
func CustomerInvoiceModelFromDomain(inv *finance.CustomerInvoice) *CustomerInvoiceModel {
	m := &CustomerInvoiceModel{
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		DeviceID:      inv.DeviceID,
		TicketID:      inv.TicketID,
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		Discount:      inv.Discount,
		Total:         inv.Total,
		PaymentStatus: string(inv.PaymentStatus),
		DueDate:       inv.DueDate,
		PaidDate:      inv.PaidDate,
		Notes:         inv.Notes,
		Items:         make([]InvoiceItemModel, len(inv.Items)),
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	for i := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(inv.ID, &inv.Items[i])
	}
	return m
}

// InvoiceItemModel is one billed line
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID      *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() *finance.InvoiceItem {
	return &finance.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		PartID:      m.PartID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
	}
}

// InvoiceItemModelFromDomain creates a persistence model for a line of invoiceID
func InvoiceItemModelFromDomain(invoiceID uuid.UUID, item *finance.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   invoiceID,
		PartID:      item.PartID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
}

// PaymentModel is money received against a customer invoice
type PaymentModel struct {
	BaseModel
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method     string          `gorm:"type:varchar(20);not null"`
	PaidAt     time.Time       `gorm:"not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	ReceivedBy string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		Amount:     m.Amount,
		Method:     finance.PaymentMethod(m.Method),
		PaidAt:     m.PaidAt,
		Reference:  m.Reference,
		ReceivedBy: m.ReceivedBy,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     string(p.Method),
		PaidAt:     p.PaidAt,
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SupplierInvoiceModel is the persistence model for the SupplierInvoice aggregate root
type SupplierInvoiceModel struct {
	AggregateModel
	InvoiceNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate         *time.Time      `gorm:"index"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierInvoiceModel) TableName() string {
	return "supplier_invoices"
}

// ToDomain converts the persistence model to a domain SupplierInvoice
func (m *SupplierInvoiceModel) ToDomain() *finance.SupplierInvoice {
	return &finance.SupplierInvoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		SupplierID:        m.SupplierID,
		PurchaseOrderID:   m.PurchaseOrderID,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		Status:            finance.SupplierInvoiceStatus(m.Status),
		DueDate:           m.DueDate,
		Notes:             m.Notes,
	}
}

// SupplierInvoiceModelFromDomain creates a persistence model from a domain SupplierInvoice
func SupplierInvoiceModelFromDomain(s *finance.SupplierInvoice) *SupplierInvoiceModel {
	m := &SupplierInvoiceModel{
		InvoiceNumber:   s.InvoiceNumber,
		SupplierID:      s.SupplierID,
		PurchaseOrderID: s.PurchaseOrderID,
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
		Status:          string(s.Status),
		DueDate:         s.DueDate,
		Notes:           s.Notes,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// SupplierPaymentModel is money paid against a supplier invoice
type SupplierPaymentModel struct {
	BaseModel
	SupplierInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method            string          `gorm:"type:varchar(20);not null"`
	PaidAt            time.Time       `gorm:"not null"`
	Reference         string          `gorm:"type:varchar(100)"`
	RecordedBy        string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SupplierPaymentModel) TableName() string {
	return "supplier_payments"
}

// ToDomain converts the persistence model to a domain SupplierPayment
func (m *SupplierPaymentModel) ToDomain() *finance.SupplierPayment {
	return &finance.SupplierPayment{
		BaseEntity:        m.BaseModel.ToDomain(),
		SupplierInvoiceID: m.SupplierInvoiceID,
		Amount:            m.Amount,
		Method:            finance.PaymentMethod(m.Method),
		PaidAt:            m.PaidAt,
		Reference:         m.Reference,
		RecordedBy:        m.RecordedBy,
	}
}

// SupplierPaymentModelFromDomain creates a persistence model from a domain SupplierPayment
func SupplierPaymentModelFromDomain(p *finance.SupplierPayment) *SupplierPaymentModel {
	m := &SupplierPaymentModel{
		SupplierInvoiceID: p.SupplierInvoiceID,
		Amount:            p.Amount,
		Method:            string(p.Method),
		PaidAt:            p.PaidAt,
		Reference:         p.Reference,
		RecordedBy:        p.RecordedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// CreditNoteModel is the persistence model for the CreditNote aggregate root
type CreditNoteModel struct {
	AggregateModel
	CreditNoteNumber  string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	PurchaseReturnID  uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex"`
	SupplierInvoiceID *uuid.UUID               `gorm:"type:uuid;index"`
	CreditAmount      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	AppliedAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingCredit   decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status            string                   `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiryDate        *time.Time               `gorm:"index"`
	Applications      []CreditApplicationModel `gorm:"foreignKey:CreditNoteID;references:ID"`
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote
func (m *CreditNoteModel) ToDomain() *finance.CreditNote {
	note := &finance.CreditNote{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CreditNoteNumber:  m.CreditNoteNumber,
		SupplierID:        m.SupplierID,
		PurchaseReturnID:  m.PurchaseReturnID,
		SupplierInvoiceID: m.SupplierInvoiceID,
		CreditAmount:      m.CreditAmount,
		AppliedAmount:     m.AppliedAmount,
		RemainingCredit:   m.RemainingCredit,
		Status:            finance.CreditNoteStatus(m.Status),
		ExpiryDate:        m.ExpiryDate,
		Applications:      make([]finance.CreditApplication, len(m.Applications)),
	}
	for i := range m.Applications {
		note.Applications[i] = *m.Applications[i].ToDomain()
	}
	return note
}

// CreditNoteModelFromDomain creates a persistence model from a domain
// CreditNote. Applications are appended through CreateApplication only.
func CreditNoteModelFromDomain(c *finance.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{
		CreditNoteNumber:  c.CreditNoteNumber,
		SupplierID:        c.SupplierID,
		PurchaseReturnID:  c.PurchaseReturnID,
		SupplierInvoiceID: c.SupplierInvoiceID,
		CreditAmount:      c.CreditAmount,
		AppliedAmount:     c.AppliedAmount,
		RemainingCredit:   c.RemainingCredit,
		Status:            string(c.Status),
		ExpiryDate:        c.ExpiryDate,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// CreditApplicationModel records one consumption of a credit note
type CreditApplicationModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	CreditNoteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedBy         string          `gorm:"type:varchar(100)"`
	AppliedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditApplicationModel) TableName() string {
	return "credit_applications"
}

// ToDomain converts the persistence model to a domain CreditApplication
func (m *CreditApplicationModel) ToDomain() *finance.CreditApplication {
	return &finance.CreditApplication{
		ID:                m.ID,
		CreditNoteID:      m.CreditNoteID,
		SupplierInvoiceID: m.SupplierInvoiceID,
		Amount:            m.Amount,
		AppliedBy:         m.AppliedBy,
		AppliedAt:         m.AppliedAt,
	}
}

// CreditApplicationModelFromDomain creates a persistence model from an application
func CreditApplicationModelFromDomain(a *finance.CreditApplication) *CreditApplicationModel {
	return &CreditApplicationModel{
		ID:                a.ID,
		CreditNoteID:      a.CreditNoteID,
		SupplierInvoiceID: a.SupplierInvoiceID,
		Amount:            a.Amount,
		AppliedBy:         a.AppliedBy,
		AppliedAt:         a.AppliedAt,
	}
}
