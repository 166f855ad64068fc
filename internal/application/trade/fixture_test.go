package trade

import (
	"context"
	"testing"

	"github.com/fixdesk/backend/internal/application/finance"
	"github.com/fixdesk/backend/internal/application/inventory"
	"github.com/fixdesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type tradeFixture struct {
	h         *testutil.Harness
	parts     *inventory.PartService
	suppliers *finance.SupplierInvoiceService
	orders    *PurchaseOrderService
	returns   *ReturnService
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	h := testutil.NewHarness(t)
	ledger := inventory.NewLedger(true)

	parts := inventory.NewPartService(h.Runner, ledger, h.Repos, inventory.PartServiceConfig{BarcodeAttempts: 3}, h.Logger)
	seq := 0
	parts.SetRandomSource(func(int) int {
		seq++
		return seq
	})
	suppliers := finance.NewSupplierInvoiceService(h.Runner, h.Repos, finance.SupplierInvoiceConfig{DueDays: 30}, h.Logger)

	return &tradeFixture{
		h:         h,
		parts:     parts,
		suppliers: suppliers,
		orders:    NewPurchaseOrderService(h.Runner, ledger, suppliers, h.Repos, h.Logger),
		returns:   NewReturnService(h.Runner, ledger, h.Repos, ReturnConfig{CreditValidityDays: 90}, h.Logger),
	}
}

func (f *tradeFixture) createPart(t *testing.T, name string, stock int, cost int64) uuid.UUID {
	t.Helper()
	part, err := f.parts.Create(context.Background(), inventory.CreatePartRequest{
		Name:         name,
		Brand:        "Samsung",
		Category:     "Screen",
		CostPrice:    decimal.NewFromInt(cost),
		SellingPrice: decimal.NewFromInt(cost * 2),
		InitialStock: stock,
	}, "alice")
	require.NoError(t, err)
	return part.ID
}

func (f *tradeFixture) stock(t *testing.T, partID uuid.UUID) int {
	t.Helper()
	part, err := f.parts.GetPart(context.Background(), partID)
	require.NoError(t, err)
	return part.CurrentStock
}

func (f *tradeFixture) createOrder(t *testing.T, supplierID uuid.UUID, items ...CreatePurchaseOrderItemInput) *PurchaseOrderResponse {
	t.Helper()
	order, err := f.orders.Create(context.Background(), CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      items,
	}, "alice")
	require.NoError(t, err)
	return order
}

func (f *tradeFixture) receivedOrder(t *testing.T, supplierID, partID uuid.UUID, qty int, cost int64) *PurchaseOrderResponse {
	t.Helper()
	order := f.createOrder(t, supplierID, CreatePurchaseOrderItemInput{
		PartID:   partID,
		Quantity: qty,
		UnitCost: decimal.NewFromInt(cost),
	})
	result, err := f.orders.MarkReceived(context.Background(), order.ID, "alice", false)
	require.NoError(t, err)
	return &result.Order
}

func (f *tradeFixture) createReturn(t *testing.T, supplierID uuid.UUID, orderID *uuid.UUID, partID uuid.UUID, qty int) *PurchaseReturnResponse {
	t.Helper()
	ret, err := f.returns.CreateReturn(context.Background(), CreatePurchaseReturnRequest{
		SupplierID:      supplierID,
		PurchaseOrderID: orderID,
		Reason:          "defective batch",
		Items:           []CreatePurchaseReturnItemInput{{PartID: partID, Quantity: qty, Condition: "defective"}},
	}, "alice")
	require.NoError(t, err)
	return ret
}

func (f *tradeFixture) createPayable(t *testing.T, supplierID uuid.UUID, total int64) *finance.SupplierInvoiceResponse {
	t.Helper()
	inv, err := f.suppliers.CreateInvoice(context.Background(), finance.CreateSupplierInvoiceRequest{
		SupplierID:  supplierID,
		TotalAmount: decimal.NewFromInt(total),
	}, "alice")
	require.NoError(t, err)
	return inv
}
