package inventory

import (
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeStockBelowMinimum is published when a delta moves a part under
// its minimum stock level
const EventTypeStockBelowMinimum = "inventory.StockBelowMinimum"

// StockBelowMinimumEvent carries the part's state after the crossing delta
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	PartID        uuid.UUID `json:"part_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	CurrentStock  int       `json:"current_stock"`
	MinStockLevel int       `json:"min_stock_level"`
}

// NewStockBelowMinimumEvent creates the event from the part's current state
func NewStockBelowMinimumEvent(p *Part) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypePart, p.ID),
		PartID:          p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		CurrentStock:    p.CurrentStock,
		MinStockLevel:   p.MinStockLevel,
	}
}
