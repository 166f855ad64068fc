package inventory

import (
	"time"

	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePartRequest describes a new part. SKU and Barcode are generated
// when left empty.
type CreatePartRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Brand         string          `json:"brand" validate:"max=100"`
	Category      string          `json:"category" validate:"max=100"`
	Model         string          `json:"model" validate:"max=100"`
	Description   string          `json:"description" validate:"max=2000"`
	SKU           string          `json:"sku" validate:"omitempty,max=50"`
	Barcode       string          `json:"barcode" validate:"omitempty,max=64"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	InitialStock  int             `json:"initial_stock" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
}

// UpdatePartRequest changes descriptive fields. A non-nil CostPrice goes
// through the cost change path and may write price history.
type UpdatePartRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Description   string           `json:"description" validate:"max=2000"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	MinStockLevel int              `json:"min_stock_level" validate:"gte=0"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	CostReason    string           `json:"cost_reason" validate:"max=500"`
}

// AdjustStockRequest is a manual or externally sourced stock change
type AdjustStockRequest struct {
	Delta         int       `json:"delta"`
	ReferenceType string    `json:"reference_type" validate:"required,oneof=repair_ticket purchase_order purchase_return manual_adjustment"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	Note          string    `json:"note" validate:"max=500"`
}

// SetCostRequest changes a part's unit cost
type SetCostRequest struct {
	CostPrice decimal.Decimal `json:"cost_price"`
	Reason    string          `json:"reason" validate:"required,max=500"`
}

// PartListFilter is the query side of part listings
type PartListFilter struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Search     string `form:"search"`
	Brand      string `form:"brand"`
	Category   string `form:"category"`
	ActiveOnly bool   `form:"active_only"`
	LowStock   bool   `form:"low_stock"`
}

func (f PartListFilter) toDomain() inventory.PartFilter {
	base := shared.DefaultFilter()
	base.Page = f.Page
	base.PageSize = f.PageSize
	base.Search = f.Search
	base.OrderBy = "name"
	base.OrderDir = "asc"
	return inventory.PartFilter{
		Filter:     base.Normalize(),
		Brand:      f.Brand,
		Category:   f.Category,
		ActiveOnly: f.ActiveOnly,
		LowStock:   f.LowStock,
	}
}

// PartResponse is the read model of a part
type PartResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Barcode        string          `json:"barcode"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Category       string          `json:"category"`
	Model          string          `json:"model"`
	Description    string          `json:"description"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	CurrentStock   int             `json:"current_stock"`
	MinStockLevel  int             `json:"min_stock_level"`
	IsBelowMinimum bool            `json:"is_below_minimum"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToPartResponse converts a domain part
func ToPartResponse(p *inventory.Part) PartResponse {
	return PartResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Barcode:        p.Barcode,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		Model:          p.Model,
		Description:    p.Description,
		CostPrice:      p.CostPrice,
		SellingPrice:   p.SellingPrice,
		CurrentStock:   p.CurrentStock,
		MinStockLevel:  p.MinStockLevel,
		IsBelowMinimum: p.IsBelowMinimum(),
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// MovementResponse is the read model of a stock movement
type MovementResponse struct {
	ID            uuid.UUID `json:"id"`
	PartID        uuid.UUID `json:"part_id"`
	Delta         int       `json:"delta"`
	BalanceBefore int       `json:"balance_before"`
	BalanceAfter  int       `json:"balance_after"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	Note          string    `json:"note"`
	Actor         string    `json:"actor"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		PartID:        m.PartID,
		Delta:         m.Delta,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: string(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		Actor:         m.Actor,
		CreatedAt:     m.CreatedAt,
	}
}

// PriceHistoryResponse is the read model of a cost change
type PriceHistoryResponse struct {
	ID        uuid.UUID       `json:"id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Change    decimal.Decimal `json:"change"`
	Reason    string          `json:"reason"`
	Actor     string          `json:"actor"`
	ChangedAt time.Time       `json:"changed_at"`
}

// ToPriceHistoryResponse converts a domain history row
func ToPriceHistoryResponse(h *inventory.PriceHistory) PriceHistoryResponse {
	return PriceHistoryResponse{
		ID:        h.ID,
		OldPrice:  h.OldPrice,
		NewPrice:  h.NewPrice,
		Change:    h.Change(),
		Reason:    h.Reason,
		Actor:     h.Actor,
		ChangedAt: h.ChangedAt,
	}
}

// ReconciliationResult compares a part's stored stock with its ledger
type ReconciliationResult struct {
	PartID       uuid.UUID `json:"part_id"`
	CurrentStock int       `json:"current_stock"`
	LedgerSum    int       `json:"ledger_sum"`
	Drift        int       `json:"drift"`
	Consistent   bool      `json:"consistent"`
}
