package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestSortColumns_Column(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"empty falls back", "", "created_at"},
		{"allowed column", "sku", "sku"},
		{"surrounding whitespace trimmed", "  current_stock ", "current_stock"},
		{"unknown column falls back", "supplier_secret", "created_at"},
		{"case sensitive", "SKU", "created_at"},
		{"injection falls back", "sku; DROP TABLE parts;--", "created_at"},
		{"quoted injection falls back", "name'--", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, partSort.column(tt.requested))
		})
	}
}

func TestSortColumns_Order(t *testing.T) {
	tests := []struct {
		dir      string
		wantDesc bool
	}{
		{"asc", false},
		{" ASC ", false},
		{"desc", true},
		{"", true},
		{"asc; --", true},
	}
	for _, tt := range tests {
		got := invoiceOrder(tt.dir)
		assert.Equal(t, tt.wantDesc, got.Desc, "dir %q", tt.dir)
		assert.Equal(t, "due_date", got.Column.Name)
	}
}

func invoiceOrder(dir string) clause.OrderByColumn {
	return customerInvoiceSort.order("due_date", dir)
}

func TestSortColumns_PerTable(t *testing.T) {
	sets := map[string]sortColumns{
		"parts":             partSort,
		"customer_invoices": customerInvoiceSort,
		"supplier_invoices": supplierInvoiceSort,
		"purchase_orders":   purchaseOrderSort,
		"purchase_returns":  purchaseReturnSort,
	}
	for table, set := range sets {
		assert.True(t, set.allowed["created_at"], table)
		assert.True(t, set.allowed["updated_at"], table)
		for col := range set.allowed {
			assert.NotContains(t, col, " ", table)
		}
	}

	// columns only sort the table that has them
	assert.Equal(t, "created_at", purchaseOrderSort.column("return_number"))
	assert.Equal(t, "created_at", customerInvoiceSort.column("total_amount"))
	assert.Equal(t, "total_amount", supplierInvoiceSort.column("total_amount"))
}
