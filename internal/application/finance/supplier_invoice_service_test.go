package finance

import (
	"context"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplierInvoiceService(t *testing.T) (*SupplierInvoiceService, *testutil.Harness) {
	t.Helper()
	h := testutil.NewHarness(t)
	return NewSupplierInvoiceService(h.Runner, h.Repos, SupplierInvoiceConfig{DueDays: 30}, h.Logger), h
}

func createPayable(t *testing.T, svc *SupplierInvoiceService, total int64) *SupplierInvoiceResponse {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), CreateSupplierInvoiceRequest{
		SupplierID:  uuid.New(),
		TotalAmount: decimal.NewFromInt(total),
	}, "bob")
	require.NoError(t, err)
	return inv
}

func paySupplier(t *testing.T, svc *SupplierInvoiceService, invoiceID uuid.UUID, amount int64) *SupplierInvoiceResponse {
	t.Helper()
	inv, err := svc.RecordPayment(context.Background(), invoiceID, RecordPaymentRequest{
		Amount: decimal.NewFromInt(amount),
		Method: "bank_transfer",
	}, "bob")
	require.NoError(t, err)
	return inv
}

func TestSupplierInvoiceService_CreateInvoice(t *testing.T) {
	svc, h := newSupplierInvoiceService(t)

	inv := createPayable(t, svc, 100)
	assert.Equal(t, "SINV-20260302-1", inv.InvoiceNumber)
	assert.Equal(t, string(finance.SupplierInvoiceStatusPending), inv.Status)
	require.NotNil(t, inv.DueDate)
	assert.True(t, inv.DueDate.Equal(h.Clock.Now().AddDate(0, 0, 30)))

	_, err := svc.CreateInvoice(context.Background(), CreateSupplierInvoiceRequest{
		SupplierID:  uuid.New(),
		TotalAmount: decimal.Zero,
	}, "bob")
	assert.ErrorIs(t, err, shared.ErrValidation)

	entries := h.AuditEntries(t, supplierInvoicesTable)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
}

func TestSupplierInvoiceService_Open_JoinsCallerTransaction(t *testing.T) {
	svc, h := newSupplierInvoiceService(t)
	ctx := context.Background()
	poID := uuid.New()

	var opened *finance.SupplierInvoice
	err := h.Runner.Run(ctx, func(w *common.Work) error {
		var err error
		opened, err = svc.Open(ctx, w, OpenInvoice{
			SupplierID:      uuid.New(),
			PurchaseOrderID: &poID,
			TotalAmount:     decimal.NewFromInt(75),
			Actor:           "bob",
		})
		require.NoError(t, err)
		return shared.NewInvalidStateError("ABORT", "abort")
	})
	require.Error(t, err)
	require.NotNil(t, opened)

	_, err = svc.GetInvoice(ctx, opened.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, h.AuditEntries(t, supplierInvoicesTable))
}

func TestSupplierInvoiceService_PaymentDiffAppliedOnce(t *testing.T) {
	svc, h := newSupplierInvoiceService(t)
	ctx := context.Background()
	inv := createPayable(t, svc, 100)

	after := paySupplier(t, svc, inv.ID, 30)
	assert.Equal(t, "30", after.PaidAmount.String())
	assert.Equal(t, string(finance.SupplierInvoiceStatusPartial), after.Status)

	payments, err := svc.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	h.Clock.Advance(time.Minute)
	after, err = svc.UpdatePayment(ctx, payments[0].ID, UpdatePaymentRequest{
		Amount: decimal.NewFromInt(45),
		Method: "bank_transfer",
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "45", after.PaidAmount.String())

	after, err = svc.UpdatePayment(ctx, payments[0].ID, UpdatePaymentRequest{
		Amount: decimal.NewFromInt(45),
		Method: "cash",
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "45", after.PaidAmount.String())

	outstanding, err := svc.GetOutstanding(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "55", outstanding.Outstanding.String())

	h.Clock.Advance(time.Minute)
	after, err = svc.DeletePayment(ctx, payments[0].ID, "bob")
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.IsZero())
	assert.Equal(t, string(finance.SupplierInvoiceStatusPending), after.Status)

	_, err = svc.DeletePayment(ctx, payments[0].ID, "bob")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSupplierInvoiceService_Overpayment(t *testing.T) {
	svc, _ := newSupplierInvoiceService(t)
	inv := createPayable(t, svc, 100)

	after := paySupplier(t, svc, inv.ID, 120)
	assert.Equal(t, string(finance.SupplierInvoiceStatusPaid), after.Status)
	assert.Equal(t, "-20", after.Outstanding.String())
}

func TestSupplierInvoiceService_RecordPayment_Errors(t *testing.T) {
	svc, _ := newSupplierInvoiceService(t)
	ctx := context.Background()
	inv := createPayable(t, svc, 100)

	_, err := svc.RecordPayment(ctx, inv.ID, RecordPaymentRequest{Amount: decimal.Zero, Method: "cash"}, "bob")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.RecordPayment(ctx, uuid.New(), RecordPaymentRequest{Amount: decimal.NewFromInt(1), Method: "cash"}, "bob")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.GetOutstanding(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSupplierInvoiceService_MarkOverdue(t *testing.T) {
	svc, h := newSupplierInvoiceService(t)
	ctx := context.Background()

	unpaid := createPayable(t, svc, 100)
	partial := createPayable(t, svc, 100)
	paySupplier(t, svc, partial.ID, 40)
	settled := createPayable(t, svc, 100)
	paySupplier(t, svc, settled.ID, 100)

	count, err := svc.MarkOverdue(ctx, h.Clock.Now().AddDate(0, 0, 10), "scheduler")
	require.NoError(t, err)
	assert.Zero(t, count)

	asOf := h.Clock.Now().AddDate(0, 0, 31)
	count, err = svc.MarkOverdue(ctx, asOf, "scheduler")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.MarkOverdue(ctx, asOf, "scheduler")
	require.NoError(t, err)
	assert.Zero(t, count)

	overdue, err := svc.ListOverdue(ctx, 1, 20)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(overdue.Items))
	for _, inv := range overdue.Items {
		ids = append(ids, inv.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{unpaid.ID, partial.ID}, ids)

	h.Clock.Advance(31 * 24 * time.Hour)
	after := paySupplier(t, svc, partial.ID, 10)
	assert.Equal(t, string(finance.SupplierInvoiceStatusOverdue), after.Status)
	after = paySupplier(t, svc, partial.ID, 50)
	assert.Equal(t, string(finance.SupplierInvoiceStatusPaid), after.Status)
}
