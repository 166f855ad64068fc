package repair

import (
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartUsage records parts consumed by a repair ticket. Its quantity is what
// was taken out of stock, so deleting the usage puts exactly that back.
type PartUsage struct {
	shared.BaseEntity
	TicketID  uuid.UUID
	PartID    uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	UsedBy    string
}

// NewPartUsage validates a consumption record
func NewPartUsage(ticketID, partID uuid.UUID, quantity int, unitPrice decimal.Decimal, usedBy string) (*PartUsage, error) {
	if ticketID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TICKET", "Ticket ID cannot be empty")
	}
	if partID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PART", "Part ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Used quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &PartUsage{
		BaseEntity: shared.NewBaseEntity(),
		TicketID:   ticketID,
		PartID:     partID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		UsedBy:     usedBy,
	}, nil
}

// ChangeQuantity sets a new quantity and returns the stock delta to apply,
// which is old - new.
func (u *PartUsage) ChangeQuantity(quantity int) (int, error) {
	if quantity <= 0 {
		return 0, shared.NewValidationError("INVALID_QUANTITY", "Used quantity must be positive")
	}
	delta := u.Quantity - quantity
	u.Quantity = quantity
	u.Touch()
	return delta, nil
}

// AuditSnapshot returns the fields recorded in audit entries
func (u *PartUsage) AuditSnapshot() map[string]any {
	return map[string]any{
		"ticket_id": u.TicketID.String(),
		"part_id":   u.PartID.String(),
		"quantity":  u.Quantity,
	}
}
