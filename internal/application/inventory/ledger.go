package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// partsTable is the entity table named in audit entries
const partsTable = "parts"

// Adjustment is one signed change of a part's stock
type Adjustment struct {
	PartID        uuid.UUID
	Delta         int
	ReferenceType inventory.ReferenceType
	ReferenceID   uuid.UUID
	Note          string
	Actor         string
}

// Ledger applies stock deltas and cost changes inside a caller's unit of
// work. Every service that moves stock goes through it so that each delta
// produces exactly one StockMovement and one audit entry.
type Ledger struct {
	allowNegative bool
	metrics       *telemetry.EngineMetrics
}

// NewLedger creates a Ledger. With allowNegative false a delta that would
// leave a part below zero fails with a ValidationError.
func NewLedger(allowNegative bool) *Ledger {
	return &Ledger{allowNegative: allowNegative}
}

// SetMetrics enables movement counters
func (l *Ledger) SetMetrics(m *telemetry.EngineMetrics) {
	l.metrics = m
}

// AllowsNegativeStock reports the configured policy
func (l *Ledger) AllowsNegativeStock() bool {
	return l.allowNegative
}

// Apply locks the part, applies the delta and appends the movement. A zero
// delta writes neither a movement nor an audit entry.
func (l *Ledger) Apply(ctx context.Context, w *common.Work, adj Adjustment) (*inventory.Part, error) {
	if !adj.ReferenceType.IsValid() {
		return nil, shared.NewValidationError("INVALID_REFERENCE_TYPE", "Unknown stock reference type: "+string(adj.ReferenceType))
	}

	part, err := w.Repos.PartRepo().FindByIDForUpdate(ctx, adj.PartID)
	if err != nil {
		return nil, err
	}
	if adj.Delta == 0 {
		return part, nil
	}

	before, after, err := part.ApplyDelta(adj.Delta, l.allowNegative)
	if err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(part.ID, adj.Delta, before, after,
		adj.ReferenceType, adj.ReferenceID, adj.Note, adj.Actor)
	if err != nil {
		return nil, err
	}
	movement.CreatedAt = w.Now

	if err := w.Repos.PartRepo().Save(ctx, part); err != nil {
		return nil, fmt.Errorf("failed to save part stock: %w", err)
	}
	if err := w.Repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to append stock movement: %w", err)
	}

	newData := map[string]any{
		"current_stock":  after,
		"delta":          adj.Delta,
		"reference_type": string(adj.ReferenceType),
	}
	if adj.ReferenceID != uuid.Nil {
		newData["reference_id"] = adj.ReferenceID.String()
	}
	if adj.Note != "" {
		newData["note"] = adj.Note
	}
	w.Audit(adj.Actor, audit.ActionStockAdjust, partsTable, part.ID,
		map[string]any{"current_stock": before}, newData)
	w.Collect(part)
	if l.metrics != nil {
		w.AfterCommit(func(ctx context.Context) {
			l.metrics.RecordStockMovement(ctx, string(adj.ReferenceType), adj.Delta)
		})
	}
	return part, nil
}

// ApplyAll applies several adjustments, locking parts in ascending id order
// so that two transactions touching the same parts cannot deadlock.
func (l *Ledger) ApplyAll(ctx context.Context, w *common.Work, adjustments []Adjustment) error {
	ordered := make([]Adjustment, len(adjustments))
	copy(ordered, adjustments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PartID.String() < ordered[j].PartID.String()
	})
	for _, adj := range ordered {
		if _, err := l.Apply(ctx, w, adj); err != nil {
			return err
		}
	}
	return nil
}

// SetCost locks the part and changes its cost price. A history row is
// written before the part is updated, and only when the cost differs.
func (l *Ledger) SetCost(ctx context.Context, w *common.Work, partID uuid.UUID, newCost decimal.Decimal, reason, actor string) (*inventory.Part, bool, error) {
	part, err := w.Repos.PartRepo().FindByIDForUpdate(ctx, partID)
	if err != nil {
		return nil, false, err
	}

	oldCost, changed, err := part.ChangeCost(newCost)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return part, false, nil
	}

	entry := inventory.NewPriceHistory(part.ID, oldCost, newCost, reason, actor)
	entry.ChangedAt = w.Now
	if err := w.Repos.PriceHistoryRepo().Create(ctx, entry); err != nil {
		return nil, false, fmt.Errorf("failed to record price history: %w", err)
	}
	if err := w.Repos.PartRepo().Save(ctx, part); err != nil {
		return nil, false, fmt.Errorf("failed to save part cost: %w", err)
	}

	w.Audit(actor, audit.ActionCostChange, partsTable, part.ID,
		map[string]any{"cost_price": oldCost.String()},
		map[string]any{"cost_price": newCost.String(), "reason": reason})
	return part, true, nil
}
