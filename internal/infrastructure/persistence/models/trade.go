package models

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	AggregateModel
	OrderNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      string          `gorm:"type:varchar(20);not null;default:'draft';index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string          `gorm:"type:text"`
	SentAt      *time.Time
	ReceivedAt  *time.Time
	ReceivedBy  string `gorm:"type:varchar(100)"`
	CancelledAt *time.Time
	Items       []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		SupplierID:        m.SupplierID,
		Status:            trade.PurchaseOrderStatus(m.Status),
		TotalAmount:       m.TotalAmount,
		Notes:             m.Notes,
		SentAt:            m.SentAt,
		ReceivedAt:        m.ReceivedAt,
		ReceivedBy:        m.ReceivedBy,
		CancelledAt:       m.CancelledAt,
		Items:             make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = *m.Items[i].ToDomain()
	}
	return order
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		SentAt:      o.SentAt,
		ReceivedAt:  o.ReceivedAt,
		ReceivedBy:  o.ReceivedBy,
		CancelledAt: o.CancelledAt,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// PurchaseOrderItemModel is one ordered line
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_po_item_order_part,priority:1"`
	PartID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_po_item_order_part,priority:2"`
	Quantity         int             `gorm:"not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem
func (m *PurchaseOrderItemModel) ToDomain() *trade.PurchaseOrderItem {
	return &trade.PurchaseOrderItem{
		ID:               m.ID,
		OrderID:          m.OrderID,
		PartID:           m.PartID,
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		ReceivedQuantity: m.ReceivedQuantity,
	}
}

// PurchaseOrderItemModelFromDomain creates a persistence model from an order line
func PurchaseOrderItemModelFromDomain(i *trade.PurchaseOrderItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		ID:               i.ID,
		OrderID:          i.OrderID,
		PartID:           i.PartID,
		Quantity:         i.Quantity,
		UnitCost:         i.UnitCost,
		ReceivedQuantity: i.ReceivedQuantity,
	}
}

// PurchaseReturnModel is the persistence model for the PurchaseReturn aggregate root
type PurchaseReturnModel struct {
	AggregateModel
	ReturnNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	Status          string          `gorm:"type:varchar(20);not null;default:'draft';index"`
	Reason          string          `gorm:"type:text"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ApprovedBy      string          `gorm:"type:varchar(100)"`
	ApprovedAt      *time.Time
	RejectedBy      string `gorm:"type:varchar(100)"`
	RejectedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
	CompletedAt     *time.Time
	Items           []PurchaseReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseReturnModel) TableName() string {
	return "purchase_returns"
}

// ToDomain converts the persistence model to a domain PurchaseReturn
func (m *PurchaseReturnModel) ToDomain() *trade.PurchaseReturn {
	ret := &trade.PurchaseReturn{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ReturnNumber:      m.ReturnNumber,
		SupplierID:        m.SupplierID,
		PurchaseOrderID:   m.PurchaseOrderID,
		Status:            trade.PurchaseReturnStatus(m.Status),
		Reason:            m.Reason,
		TotalAmount:       m.TotalAmount,
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		RejectedBy:        m.RejectedBy,
		RejectedAt:        m.RejectedAt,
		RejectionReason:   m.RejectionReason,
		CompletedAt:       m.CompletedAt,
		Items:             make([]trade.PurchaseReturnItem, len(m.Items)),
	}
	for i := range m.Items {
		ret.Items[i] = *m.Items[i].ToDomain()
	}
	return ret
}

// PurchaseReturnModelFromDomain creates a persistence model from a domain PurchaseReturn
func PurchaseReturnModelFromDomain(r *trade.PurchaseReturn) *PurchaseReturnModel {
	m := &PurchaseReturnModel{
		ReturnNumber:    r.ReturnNumber,
		SupplierID:      r.SupplierID,
		PurchaseOrderID: r.PurchaseOrderID,
		Status:          string(r.Status),
		Reason:          r.Reason,
		TotalAmount:     r.TotalAmount,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectedBy:      r.RejectedBy,
		RejectedAt:      r.RejectedAt,
		RejectionReason: r.RejectionReason,
		CompletedAt:     r.CompletedAt,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// PurchaseReturnItemModel is one returned line
type PurchaseReturnItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Condition string          `gorm:"type:varchar(20);not null;default:'other'"`
}

// TableName returns the table name for GORM
func (PurchaseReturnItemModel) TableName() string {
	return "purchase_return_items"
}

// ToDomain converts the persistence model to a domain PurchaseReturnItem
func (m *PurchaseReturnItemModel) ToDomain() *trade.PurchaseReturnItem {
	return &trade.PurchaseReturnItem{
		ID:        m.ID,
		ReturnID:  m.ReturnID,
		PartID:    m.PartID,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Condition: trade.ItemCondition(m.Condition),
	}
}

// PurchaseReturnItemModelFromDomain creates a persistence model from a return line
func PurchaseReturnItemModelFromDomain(i *trade.PurchaseReturnItem) *PurchaseReturnItemModel {
	return &PurchaseReturnItemModel{
		ID:        i.ID,
		ReturnID:  i.ReturnID,
		PartID:    i.PartID,
		Quantity:  i.Quantity,
		UnitCost:  i.UnitCost,
		Condition: string(i.Condition),
	}
}
