package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvoice(t *testing.T, number string, prices ...int64) *finance.CustomerInvoice {
	t.Helper()
	items := make([]finance.InvoiceItem, 0, len(prices))
	for _, p := range prices {
		item, err := finance.NewInvoiceItem("labour", nil, 1, decimal.NewFromInt(p))
		require.NoError(t, err)
		items = append(items, *item)
	}
	inv, err := finance.NewCustomerInvoice(number, uuid.New(), nil, nil, finance.InvoiceTerms{}, items)
	require.NoError(t, err)
	return inv
}

func TestGormCustomerInvoiceRepository_SaveReplacesItems(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerInvoiceRepository(newTestDB(t))
	inv := newInvoice(t, "INV-20260302-1", 100, 50)
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(150)))

	require.NoError(t, found.RemoveItem(found.Items[0].ID))
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByIDForUpdate(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.True(t, again.Total.Equal(again.Items[0].LineTotal))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCustomerInvoiceRepository_DuplicateNumberConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerInvoiceRepository(newTestDB(t))
	require.NoError(t, repo.Save(ctx, newInvoice(t, "INV-20260302-1", 100)))

	err := repo.Save(ctx, newInvoice(t, "INV-20260302-1", 40))
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.KindConflict, de.Kind)
	assert.Equal(t, "DUPLICATE_INVOICE", de.Code)

	count, err := repo.CountByNumberPrefix(ctx, "INV-20260302")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormCustomerInvoiceRepository_FindAllAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerInvoiceRepository(newTestDB(t))
	first := newInvoice(t, "INV-20260302-1", 10)
	second := newInvoice(t, "INV-20260302-2", 20)
	second.ApplyPaidTotal(decimal.NewFromInt(20), time.Now())
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	count, err := repo.CountByNumberPrefix(ctx, "INV-20260302")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	paid, total, err := repo.FindAll(ctx, finance.InvoiceFilter{
		Filter: shared.Filter{}.Normalize(),
		Status: finance.PaymentStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, paid, 1)
	assert.Equal(t, "INV-20260302-2", paid[0].InvoiceNumber)
	assert.NotNil(t, paid[0].PaidDate)
}

func TestGormPaymentRepository_SumAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	invoices := NewGormCustomerInvoiceRepository(db)
	payments := NewGormPaymentRepository(db)
	inv := newInvoice(t, "INV-20260302-1", 150)
	require.NoError(t, invoices.Save(ctx, inv))

	sum, err := payments.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	var ids []uuid.UUID
	for _, amount := range []string{"100.10", "49.90"} {
		p, err := finance.NewPayment(inv.ID, decimal.RequireFromString(amount), finance.PaymentMethodCash, time.Now(), "", "alice")
		require.NoError(t, err)
		require.NoError(t, payments.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	sum, err = payments.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "150", sum.String())

	require.NoError(t, payments.Delete(ctx, ids[0]))
	sum, err = payments.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "49.9", sum.String())

	assert.ErrorIs(t, payments.Delete(ctx, ids[0]), shared.ErrNotFound)
}
