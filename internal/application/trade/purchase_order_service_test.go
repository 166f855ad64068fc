package trade

import (
	"context"
	"testing"

	"github.com/fixdesk/backend/internal/application/finance"
	"github.com/fixdesk/backend/internal/domain/audit"
	domainfinance "github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderService_Create(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	partID := f.createPart(t, "Galaxy S21 Screen", 0, 50)

	order := f.createOrder(t, uuid.New(), CreatePurchaseOrderItemInput{PartID: partID, Quantity: 4, UnitCost: decimal.NewFromInt(45)})
	assert.Equal(t, "PO-20260302-1", order.OrderNumber)
	assert.Equal(t, string(trade.PurchaseOrderStatusDraft), order.Status)
	assert.Equal(t, "180", order.TotalAmount.String())

	_, err := f.orders.Create(ctx, CreatePurchaseOrderRequest{
		SupplierID: uuid.New(),
		Items:      []CreatePurchaseOrderItemInput{{PartID: uuid.New(), Quantity: 1}},
	}, "alice")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.orders.Create(ctx, CreatePurchaseOrderRequest{SupplierID: uuid.New()}, "alice")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.orders.Create(ctx, CreatePurchaseOrderRequest{
		SupplierID: uuid.New(),
		Items: []CreatePurchaseOrderItemInput{
			{PartID: partID, Quantity: 1},
			{PartID: partID, Quantity: 2},
		},
	}, "alice")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPurchaseOrderService_MarkReceived(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplierID := uuid.New()
	screen := f.createPart(t, "Galaxy S21 Screen", 3, 50)
	battery := f.createPart(t, "Galaxy S21 Battery", 0, 12)

	order := f.createOrder(t, supplierID,
		CreatePurchaseOrderItemInput{PartID: screen, Quantity: 5, UnitCost: decimal.NewFromInt(55)},
		CreatePurchaseOrderItemInput{PartID: battery, Quantity: 10, UnitCost: decimal.NewFromInt(12)},
	)
	_, err := f.orders.MarkSent(ctx, order.ID, "alice")
	require.NoError(t, err)

	result, err := f.orders.MarkReceived(ctx, order.ID, "bob", true)
	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusReceived), result.Order.Status)
	assert.Equal(t, "bob", result.Order.ReceivedBy)
	for _, item := range result.Order.Items {
		assert.Equal(t, item.Quantity, item.ReceivedQuantity)
	}

	assert.Equal(t, 8, f.stock(t, screen))
	assert.Equal(t, 10, f.stock(t, battery))

	t.Run("cost reconciled only where it differs", func(t *testing.T) {
		history, err := f.parts.ListPriceHistory(ctx, screen)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "50", history[0].OldPrice.String())
		assert.Equal(t, "55", history[0].NewPrice.String())

		history, err = f.parts.ListPriceHistory(ctx, battery)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("supplier invoice opened for the total", func(t *testing.T) {
		require.NotNil(t, result.SupplierInvoice)
		assert.Equal(t, "395", result.SupplierInvoice.TotalAmount.String())
		assert.Equal(t, string(domainfinance.SupplierInvoiceStatusPending), result.SupplierInvoice.Status)
		require.NotNil(t, result.SupplierInvoice.PurchaseOrderID)
		assert.Equal(t, order.ID, *result.SupplierInvoice.PurchaseOrderID)
	})

	t.Run("receiving twice is refused", func(t *testing.T) {
		_, err := f.orders.MarkReceived(ctx, order.ID, "bob", true)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, 8, f.stock(t, screen))

		invoices, err := f.suppliers.List(ctx, finance.SupplierInvoiceListFilter{SupplierID: &supplierID})
		require.NoError(t, err)
		assert.Len(t, invoices.Items, 1)
	})

	entries := f.h.AuditEntries(t, purchaseOrdersTable)
	actions := make([]audit.Action, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []audit.Action{audit.ActionCreate, audit.ActionStatus, audit.ActionReceive}, actions)
}

func TestPurchaseOrderService_MarkReceived_RollsBackOnFailure(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	kept := f.createPart(t, "Galaxy S21 Screen", 2, 50)
	gone := f.createPart(t, "Galaxy S21 Battery", 0, 12)
	order := f.createOrder(t, uuid.New(),
		CreatePurchaseOrderItemInput{PartID: kept, Quantity: 5, UnitCost: decimal.NewFromInt(60)},
		CreatePurchaseOrderItemInput{PartID: gone, Quantity: 5, UnitCost: decimal.NewFromInt(12)},
	)

	require.NoError(t, f.h.DB.Exec("DELETE FROM parts WHERE id = ?", gone).Error)

	_, err := f.orders.MarkReceived(ctx, order.ID, "bob", true)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Equal(t, 2, f.stock(t, kept))
	movements, err := f.parts.ListMovements(ctx, kept, 1, 20)
	require.NoError(t, err)
	assert.Len(t, movements.Items, 1)

	stored, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusDraft), stored.Status)
}

func TestPurchaseOrderService_Cancel(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	partID := f.createPart(t, "Galaxy S21 Screen", 0, 50)
	order := f.createOrder(t, uuid.New(), CreatePurchaseOrderItemInput{PartID: partID, Quantity: 1, UnitCost: decimal.NewFromInt(50)})

	cancelled, err := f.orders.Cancel(ctx, order.ID, CancelPurchaseOrderRequest{Reason: "supplier out of stock"}, "alice")
	require.NoError(t, err)
	assert.Equal(t, string(trade.PurchaseOrderStatusCancelled), cancelled.Status)
	assert.Contains(t, cancelled.Notes, "supplier out of stock")

	_, err = f.orders.MarkReceived(ctx, order.ID, "bob", false)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = f.orders.MarkSent(ctx, order.ID, "alice")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	list, err := f.orders.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}
