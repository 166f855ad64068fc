package inventory

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PartFilter narrows part listings
type PartFilter struct {
	shared.Filter
	Brand      string
	Category   string
	ActiveOnly bool
	LowStock   bool
}

// PartRepository persists parts. FindByIDForUpdate takes a row lock that is
// held until the surrounding transaction ends.
type PartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Part, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Part, error)
	FindBySKU(ctx context.Context, sku string) (*Part, error)
	FindAll(ctx context.Context, filter PartFilter) ([]Part, int64, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
	CountBySKUPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, part *Part) error
}

// StockMovementRepository appends and reads ledger rows
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByPart(ctx context.Context, partID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
	SumDeltas(ctx context.Context, partID uuid.UUID) (int, error)
}

// PriceHistoryRepository appends and reads cost changes
type PriceHistoryRepository interface {
	Create(ctx context.Context, entry *PriceHistory) error
	FindByPart(ctx context.Context, partID uuid.UUID) ([]PriceHistory, error)
}
