package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseOrder is the aggregate type name for purchase orders
const AggregateTypePurchaseOrder = "PurchaseOrder"

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "sent"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false
	}
	return false
}

// PurchaseOrderItem is one ordered part
type PurchaseOrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	PartID           uuid.UUID
	Quantity         int
	UnitCost         decimal.Decimal
	ReceivedQuantity int
}

// LineTotal returns Quantity x UnitCost
func (i *PurchaseOrderItem) LineTotal() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PurchaseOrder is an order for parts placed with a supplier. Receiving it
// is what brings the ordered quantities into stock.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber string
	SupplierID  uuid.UUID
	Status      PurchaseOrderStatus
	TotalAmount decimal.Decimal
	Notes       string
	SentAt      *time.Time
	ReceivedAt  *time.Time
	ReceivedBy  string
	CancelledAt *time.Time
	Items       []PurchaseOrderItem
}

// NewPurchaseOrder creates an empty draft order
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, notes string) (*PurchaseOrder, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		Status:            PurchaseOrderStatusDraft,
		TotalAmount:       decimal.Zero,
		Notes:             notes,
		Items:             make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem adds a part to a draft order. A part may appear on one line only.
func (o *PurchaseOrder) AddItem(partID uuid.UUID, quantity int, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot modify order in %s status", o.Status))
	}
	if partID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PART", "Part ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST", "Unit cost cannot be negative")
	}
	if o.ItemForPart(partID) != nil {
		return nil, shared.NewValidationError("DUPLICATE_PART", fmt.Sprintf("Part %s is already on this order", partID))
	}

	o.Items = append(o.Items, PurchaseOrderItem{
		ID:       uuid.New(),
		OrderID:  o.ID,
		PartID:   partID,
		Quantity: quantity,
		UnitCost: unitCost,
	})
	o.recalculateTotal()
	o.IncrementVersion()
	return &o.Items[len(o.Items)-1], nil
}

// MarkSent records that the order went out to the supplier
func (o *PurchaseOrder) MarkSent(now time.Time) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusSent) {
		return shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot send order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Cannot send order without items")
	}
	o.Status = PurchaseOrderStatusSent
	o.SentAt = &now
	o.IncrementVersion()
	return nil
}

// Receive marks every line fully received. The caller books the stock.
func (o *PurchaseOrder) Receive(actor string, now time.Time) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusReceived) {
		return shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot receive order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Cannot receive order without items")
	}
	for idx := range o.Items {
		o.Items[idx].ReceivedQuantity = o.Items[idx].Quantity
	}
	o.Status = PurchaseOrderStatusReceived
	o.ReceivedAt = &now
	o.ReceivedBy = actor
	o.IncrementVersion()
	return nil
}

// Cancel cancels an order that has not been received
func (o *PurchaseOrder) Cancel(reason string, now time.Time) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewInvalidStateError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	if reason != "" {
		o.Notes = strings.TrimSpace(o.Notes + "\n" + "Cancelled: " + reason)
	}
	o.IncrementVersion()
	return nil
}

// ItemForPart returns the line for a part, or nil
func (o *PurchaseOrder) ItemForPart(partID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].PartID == partID {
			return &o.Items[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	o.TotalAmount = total
}

// AuditSnapshot returns the fields recorded in audit entries
func (o *PurchaseOrder) AuditSnapshot() map[string]any {
	return map[string]any{
		"order_number": o.OrderNumber,
		"status":       string(o.Status),
		"total_amount": o.TotalAmount.String(),
		"item_count":   len(o.Items),
	}
}
