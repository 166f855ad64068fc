package inventory

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReferenceType names the business source of a stock movement
type ReferenceType string

const (
	ReferenceInitialStock     ReferenceType = "initial_stock"
	ReferenceRepairTicket     ReferenceType = "repair_ticket"
	ReferencePurchaseOrder    ReferenceType = "purchase_order"
	ReferencePurchaseReturn   ReferenceType = "purchase_return"
	ReferenceManualAdjustment ReferenceType = "manual_adjustment"
)

// String returns the string representation of ReferenceType
func (t ReferenceType) String() string {
	return string(t)
}

// IsValid returns true if the reference type is known
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceInitialStock,
		ReferenceRepairTicket,
		ReferencePurchaseOrder,
		ReferencePurchaseReturn,
		ReferenceManualAdjustment:
		return true
	}
	return false
}

// StockMovement is one immutable row of the stock ledger. For every part the
// sum of Delta over its movements equals Part.CurrentStock.
type StockMovement struct {
	ID            uuid.UUID
	PartID        uuid.UUID
	Delta         int
	BalanceBefore int
	BalanceAfter  int
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
	Note          string
	Actor         string
	CreatedAt     time.Time
}

// NewStockMovement builds a ledger row for a delta already applied to a part
func NewStockMovement(partID uuid.UUID, delta, before, after int, refType ReferenceType, refID uuid.UUID, note, actor string) (*StockMovement, error) {
	if partID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PART", "Part ID cannot be empty")
	}
	if !refType.IsValid() {
		return nil, shared.NewValidationError("INVALID_REFERENCE_TYPE", "Unknown stock reference type: "+string(refType))
	}
	if before+delta != after {
		return nil, shared.NewValidationError("INVALID_BALANCE", "Balance after must equal balance before plus delta")
	}
	return &StockMovement{
		ID:            uuid.New(),
		PartID:        partID,
		Delta:         delta,
		BalanceBefore: before,
		BalanceAfter:  after,
		ReferenceType: refType,
		ReferenceID:   refID,
		Note:          note,
		Actor:         actor,
		CreatedAt:     time.Now(),
	}, nil
}

// IsIncrease reports whether the movement added stock
func (m *StockMovement) IsIncrease() bool {
	return m.Delta > 0
}
