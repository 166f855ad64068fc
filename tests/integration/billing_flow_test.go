package integration

import (
	"context"
	"testing"
	"time"

	financeapp "github.com/fixdesk/backend/internal/application/finance"
	inventoryapp "github.com/fixdesk/backend/internal/application/inventory"
	tradeapp "github.com/fixdesk/backend/internal/application/trade"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSupplierBillingFlow walks a purchase through receipt, a defective
// return, the resulting credit and the overdue sweep.
func TestSupplierBillingFlow(t *testing.T) {
	h := testutil.NewHarnessWithDB(t, NewTestDB(t))
	ledger := inventoryapp.NewLedger(false)
	parts := inventoryapp.NewPartService(h.Runner, ledger, h.Repos, inventoryapp.PartServiceConfig{BarcodeAttempts: 5}, h.Logger)
	suppliers := financeapp.NewSupplierInvoiceService(h.Runner, h.Repos, financeapp.SupplierInvoiceConfig{DueDays: 30}, h.Logger)
	orders := tradeapp.NewPurchaseOrderService(h.Runner, ledger, suppliers, h.Repos, h.Logger)
	returns := tradeapp.NewReturnService(h.Runner, ledger, h.Repos, tradeapp.ReturnConfig{CreditValidityDays: 90}, h.Logger)
	ctx := context.Background()
	supplierID := uuid.New()

	part, err := parts.Create(ctx, inventoryapp.CreatePartRequest{
		Name:         "iPad Air Digitizer",
		Brand:        "Apple",
		Category:     "Screen",
		CostPrice:    decimal.NewFromInt(40),
		SellingPrice: decimal.NewFromInt(110),
	}, "alice")
	require.NoError(t, err)

	// Receipt books stock, moves the cost and opens the payable
	order, err := orders.Create(ctx, tradeapp.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items: []tradeapp.CreatePurchaseOrderItemInput{
			{PartID: part.ID, Quantity: 10, UnitCost: decimal.NewFromInt(45)},
		},
	}, "alice")
	require.NoError(t, err)
	_, err = orders.MarkSent(ctx, order.ID, "alice")
	require.NoError(t, err)

	received, err := orders.MarkReceived(ctx, order.ID, "bob", true)
	require.NoError(t, err)
	require.NotNil(t, received.SupplierInvoice)
	payable := received.SupplierInvoice
	assert.Equal(t, "450", payable.TotalAmount.String())
	require.NotNil(t, payable.DueDate)

	got, err := parts.GetPart(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentStock)
	assert.Equal(t, "45", got.CostPrice.String())

	history, err := parts.ListPriceHistory(ctx, part.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "40", history[0].OldPrice.String())

	// A defective return takes stock out and earns a credit at the order cost
	ret, err := returns.CreateReturn(ctx, tradeapp.CreatePurchaseReturnRequest{
		SupplierID:      supplierID,
		PurchaseOrderID: &order.ID,
		Reason:          "dead pixels",
		Items:           []tradeapp.CreatePurchaseReturnItemInput{{PartID: part.ID, Quantity: 2, Condition: "defective"}},
	}, "alice")
	require.NoError(t, err)
	_, err = returns.Approve(ctx, ret.ID, "manager")
	require.NoError(t, err)
	_, err = returns.Complete(ctx, ret.ID, "manager")
	require.NoError(t, err)

	got, err = parts.GetPart(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.CurrentStock)

	note, err := returns.GenerateCreditNote(ctx, ret.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, "90", note.CreditAmount.String())

	// Part of the credit offsets the payable, then the rest is paid in cash
	applied, err := returns.ApplyCredit(ctx, note.ID, tradeapp.ApplyCreditRequest{
		SupplierInvoiceID: payable.ID,
		Amount:            decimal.NewFromInt(50),
	}, "manager")
	require.NoError(t, err)
	assert.Equal(t, "40", applied.CreditNote.RemainingCredit.String())
	assert.Equal(t, "400", applied.SupplierInvoice.Outstanding.String())
	assert.Equal(t, "partial", applied.SupplierInvoice.Status)

	// Nothing is overdue before the due date, everything open is after it
	marked, err := suppliers.MarkOverdue(ctx, payable.DueDate.Add(-time.Hour), "scheduler")
	require.NoError(t, err)
	assert.Zero(t, marked)
	marked, err = suppliers.MarkOverdue(ctx, payable.DueDate.Add(time.Hour), "scheduler")
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	paid, err := suppliers.RecordPayment(ctx, payable.ID, financeapp.RecordPaymentRequest{
		Amount: decimal.NewFromInt(400),
		Method: "bank_transfer",
	}, "accounts")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
	assert.True(t, paid.Outstanding.IsZero())

	// The leftover credit lapses at its expiry date
	expired, err := returns.ExpireCreditNotes(ctx, h.Clock.Now().AddDate(0, 0, 91), "scheduler")
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	note, err = returns.GetCreditNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", note.Status)

	// Every step left an audit entry on its aggregate
	var actions []audit.Action
	for _, e := range h.AuditEntries(t, "purchase_returns") {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, audit.ActionCreate)
	assert.Contains(t, actions, audit.ActionComplete)
}
