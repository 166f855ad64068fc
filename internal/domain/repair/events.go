package repair

import (
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypePartConsumed is delivered by the ticketing side when a technician
// puts a part into a repair
const EventTypePartConsumed = "repair.PartConsumed"

// PartConsumedEvent asks the engine to record a ticket part usage
type PartConsumedEvent struct {
	shared.BaseDomainEvent
	TicketID uuid.UUID `json:"ticket_id"`
	PartID   uuid.UUID `json:"part_id"`
	Quantity int       `json:"quantity"`
	Actor    string    `json:"actor"`
}

// NewPartConsumedEvent creates the event
func NewPartConsumedEvent(ticketID, partID uuid.UUID, quantity int, actor string) *PartConsumedEvent {
	return &PartConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartConsumed, "RepairTicket", ticketID),
		TicketID:        ticketID,
		PartID:          partID,
		Quantity:        quantity,
		Actor:           actor,
	}
}
