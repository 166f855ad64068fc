package inventory

import (
	"fmt"
	"strings"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePart is the aggregate type name used in events and audit rows
const AggregateTypePart = "Part"

// Part is a stocked spare part. CurrentStock is a materialized aggregate of
// the part's StockMovement rows and is only changed through ApplyDelta.
type Part struct {
	shared.BaseAggregateRoot
	SKU           string
	Barcode       string
	Name          string
	Brand         string
	Category      string
	Model         string
	Description   string
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	CurrentStock  int
	MinStockLevel int
	IsActive      bool
}

// NewPart validates the descriptive fields and returns an active part with
// zero stock. The initial quantity is booked separately as an initial_stock
// movement so that the ledger sum includes it.
func NewPart(name, brand, category, model string, costPrice, sellingPrice decimal.Decimal, minStockLevel int) (*Part, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Part name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Part name cannot exceed 200 characters")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST", "Cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Selling price cannot be negative")
	}
	if minStockLevel < 0 {
		return nil, shared.NewValidationError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}

	return &Part{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Brand:             strings.TrimSpace(brand),
		Category:          strings.TrimSpace(category),
		Model:             strings.TrimSpace(model),
		CostPrice:         costPrice,
		SellingPrice:      sellingPrice,
		MinStockLevel:     minStockLevel,
		IsActive:          true,
	}, nil
}

// AssignIdentifiers sets the SKU and barcode. Both must be non-empty.
func (p *Part) AssignIdentifiers(sku, barcode string) error {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	barcode = strings.TrimSpace(barcode)
	if sku == "" {
		return shared.NewValidationError("INVALID_SKU", "SKU cannot be empty")
	}
	if barcode == "" {
		return shared.NewValidationError("INVALID_BARCODE", "Barcode cannot be empty")
	}
	p.SKU = sku
	p.Barcode = barcode
	return nil
}

// ApplyDelta adds a signed delta to CurrentStock and returns the balances
// before and after. When allowNegative is false a delta that would leave the
// part below zero is rejected. A zero delta changes nothing.
func (p *Part) ApplyDelta(delta int, allowNegative bool) (before, after int, err error) {
	if delta == 0 {
		return p.CurrentStock, p.CurrentStock, nil
	}
	before = p.CurrentStock
	after = before + delta
	if after < 0 && !allowNegative {
		return 0, 0, shared.NewValidationError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Part %s has %d in stock, cannot remove %d", p.SKU, before, -delta))
	}

	p.CurrentStock = after
	p.IncrementVersion()

	if p.MinStockLevel > 0 && before >= p.MinStockLevel && after < p.MinStockLevel {
		p.AddDomainEvent(NewStockBelowMinimumEvent(p))
	}
	return before, after, nil
}

// ChangeCost replaces CostPrice. changed is false when newCost equals the
// stored cost, in which case nothing is modified.
func (p *Part) ChangeCost(newCost decimal.Decimal) (old decimal.Decimal, changed bool, err error) {
	if newCost.IsNegative() {
		return decimal.Zero, false, shared.NewValidationError("INVALID_COST", "Cost price cannot be negative")
	}
	old = p.CostPrice
	if old.Equal(newCost) {
		return old, false, nil
	}
	p.CostPrice = newCost
	p.IncrementVersion()
	return old, true, nil
}

// UpdateDetails changes the descriptive fields. Identifiers, cost and stock
// have dedicated operations.
func (p *Part) UpdateDetails(name, description string, sellingPrice decimal.Decimal, minStockLevel int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Part name cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Selling price cannot be negative")
	}
	if minStockLevel < 0 {
		return shared.NewValidationError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}
	p.Name = name
	p.Description = description
	p.SellingPrice = sellingPrice
	p.MinStockLevel = minStockLevel
	p.IncrementVersion()
	return nil
}

// Deactivate soft-deletes the part
func (p *Part) Deactivate() error {
	if !p.IsActive {
		return shared.NewInvalidStateError("ALREADY_INACTIVE", "Part is already inactive")
	}
	p.IsActive = false
	p.IncrementVersion()
	return nil
}

// Activate reverses Deactivate
func (p *Part) Activate() error {
	if p.IsActive {
		return shared.NewInvalidStateError("ALREADY_ACTIVE", "Part is already active")
	}
	p.IsActive = true
	p.IncrementVersion()
	return nil
}

// RebuildStock overwrites CurrentStock with the ledger sum. It repairs drift
// left by writes that bypassed the ledger and records no movement itself.
func (p *Part) RebuildStock(ledgerSum int) (old int, changed bool) {
	old = p.CurrentStock
	if old == ledgerSum {
		return old, false
	}
	p.CurrentStock = ledgerSum
	p.IncrementVersion()
	return old, true
}

// IsBelowMinimum reports whether stock is under the reorder threshold
func (p *Part) IsBelowMinimum() bool {
	return p.MinStockLevel > 0 && p.CurrentStock < p.MinStockLevel
}

// AuditSnapshot returns the fields recorded in audit entries
func (p *Part) AuditSnapshot() map[string]any {
	return map[string]any{
		"sku":             p.SKU,
		"barcode":         p.Barcode,
		"name":            p.Name,
		"cost_price":      p.CostPrice.String(),
		"selling_price":   p.SellingPrice.String(),
		"current_stock":   p.CurrentStock,
		"min_stock_level": p.MinStockLevel,
		"is_active":       p.IsActive,
	}
}
