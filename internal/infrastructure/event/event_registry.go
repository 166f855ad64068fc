package event

import (
	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
)

// InboundEventTypes lists the events accepted from outside the engine
var InboundEventTypes = []string{
	repair.EventTypePartConsumed,
	trade.EventTypePurchaseOrderReceived,
	trade.EventTypePurchaseReturnApproved,
	finance.EventTypePaymentRecorded,
}

// RegisterAllEvents registers every event the engine consumes or emits.
// The empty instances carry their type so payloads may omit it.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(repair.EventTypePartConsumed, func() shared.DomainEvent {
		return &repair.PartConsumedEvent{BaseDomainEvent: typed(repair.EventTypePartConsumed)}
	})
	serializer.Register(trade.EventTypePurchaseOrderReceived, func() shared.DomainEvent {
		return &trade.PurchaseOrderReceivedEvent{BaseDomainEvent: typed(trade.EventTypePurchaseOrderReceived)}
	})
	serializer.Register(trade.EventTypePurchaseReturnApproved, func() shared.DomainEvent {
		return &trade.PurchaseReturnApprovedEvent{BaseDomainEvent: typed(trade.EventTypePurchaseReturnApproved)}
	})
	serializer.Register(finance.EventTypePaymentRecorded, func() shared.DomainEvent {
		return &finance.PaymentRecordedEvent{BaseDomainEvent: typed(finance.EventTypePaymentRecorded)}
	})
	serializer.Register(inventory.EventTypeStockBelowMinimum, func() shared.DomainEvent {
		return &inventory.StockBelowMinimumEvent{BaseDomainEvent: typed(inventory.EventTypeStockBelowMinimum)}
	})
}

func typed(eventType string) shared.BaseDomainEvent {
	return shared.BaseDomainEvent{Type: eventType}
}
