package trade

import (
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypePurchaseOrderReceived  = "trade.PurchaseOrderReceived"
	EventTypePurchaseReturnApproved = "trade.PurchaseReturnApproved"
)

// PurchaseOrderReceivedEvent reports that the goods of a purchase order
// arrived. OpenInvoice asks for a pending supplier invoice over the PO total.
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	Actor           string    `json:"actor"`
	OpenInvoice     bool      `json:"open_invoice"`
}

// NewPurchaseOrderReceivedEvent creates the event
func NewPurchaseOrderReceivedEvent(orderID uuid.UUID, actor string, openInvoice bool) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, orderID),
		PurchaseOrderID: orderID,
		Actor:           actor,
		OpenInvoice:     openInvoice,
	}
}

// PurchaseReturnApprovedEvent reports a return approved upstream
type PurchaseReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnID uuid.UUID `json:"return_id"`
	Actor    string    `json:"actor"`
}

// NewPurchaseReturnApprovedEvent creates the event
func NewPurchaseReturnApprovedEvent(returnID uuid.UUID, actor string) *PurchaseReturnApprovedEvent {
	return &PurchaseReturnApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReturnApproved, AggregateTypePurchaseReturn, returnID),
		ReturnID:        returnID,
		Actor:           actor,
	}
}
