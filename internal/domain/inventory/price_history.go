package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records one change of a part's unit cost. Rows are append-only.
type PriceHistory struct {
	ID        uuid.UUID
	PartID    uuid.UUID
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	Reason    string
	Actor     string
	ChangedAt time.Time
}

// NewPriceHistory creates a history row stamped with the current time
func NewPriceHistory(partID uuid.UUID, oldPrice, newPrice decimal.Decimal, reason, actor string) *PriceHistory {
	return &PriceHistory{
		ID:        uuid.New(),
		PartID:    partID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Reason:    reason,
		Actor:     actor,
		ChangedAt: time.Now(),
	}
}

// Change returns NewPrice - OldPrice
func (h *PriceHistory) Change() decimal.Decimal {
	return h.NewPrice.Sub(h.OldPrice)
}
