package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns is the set of columns a list query may be ordered by. Requests
// naming anything else fall back to the default column, so caller input
// never reaches the ORDER BY clause unchecked.
type sortColumns struct {
	fallback string
	allowed  map[string]bool
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]bool, len(columns)+1)
	allowed[fallback] = true
	for _, c := range columns {
		allowed[c] = true
	}
	return sortColumns{fallback: fallback, allowed: allowed}
}

// column returns the requested column if allowed, else the fallback
func (s sortColumns) column(requested string) string {
	requested = strings.TrimSpace(requested)
	if s.allowed[requested] {
		return requested
	}
	return s.fallback
}

// order builds the ORDER BY term. Anything but "asc" sorts descending.
func (s sortColumns) order(orderBy, orderDir string) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: s.column(orderBy)},
		Desc:   !strings.EqualFold(strings.TrimSpace(orderDir), "asc"),
	}
}

var (
	partSort = newSortColumns("created_at",
		"updated_at", "sku", "name", "brand", "category",
		"cost_price", "selling_price", "current_stock", "min_stock_level")

	customerInvoiceSort = newSortColumns("created_at",
		"updated_at", "invoice_number", "due_date", "total", "payment_status")

	supplierInvoiceSort = newSortColumns("created_at",
		"updated_at", "invoice_number", "due_date", "total_amount", "status")

	purchaseOrderSort  = newSortColumns("created_at", "updated_at", "order_number", "status", "total_amount")
	purchaseReturnSort = newSortColumns("created_at", "updated_at", "return_number", "status", "total_amount")
)
