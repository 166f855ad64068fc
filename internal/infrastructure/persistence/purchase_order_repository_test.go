package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPurchaseOrderRepository_ReceiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPurchaseOrderRepository(newTestDB(t))
	partA, partB := uuid.New(), uuid.New()

	order, err := trade.NewPurchaseOrder("PO-20260302-1", uuid.New(), "")
	require.NoError(t, err)
	_, err = order.AddItem(partA, 20, decimal.NewFromInt(8))
	require.NoError(t, err)
	_, err = order.AddItem(partB, 5, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	locked, err := repo.FindByIDForUpdate(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, locked.Receive("alice", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Save(ctx, locked))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusReceived, found.Status)
	assert.Equal(t, "175", found.TotalAmount.String())
	require.Len(t, found.Items, 2)
	assert.Equal(t, 20, found.ItemForPart(partA).ReceivedQuantity)
	assert.Equal(t, "alice", found.ReceivedBy)
}

func TestGormPurchaseReturnRepository_FindByPurchaseOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPurchaseReturnRepository(newTestDB(t))
	supplierID, orderID, partID := uuid.New(), uuid.New(), uuid.New()

	for _, number := range []string{"RET-20260302-1", "RET-20260302-2"} {
		ret, err := trade.NewPurchaseReturn(number, supplierID, &orderID, "defective")
		require.NoError(t, err)
		_, err = ret.AddItem(partID, 2, decimal.NewFromInt(20), trade.ConditionDefective)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, ret))
	}
	other, err := trade.NewPurchaseReturn("RET-20260302-3", supplierID, nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	returns, err := repo.FindByPurchaseOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, returns, 2)
	for _, r := range returns {
		require.Len(t, r.Items, 1)
		assert.Equal(t, 2, r.Items[0].Quantity)
		assert.Equal(t, trade.ConditionDefective, r.Items[0].Condition)
	}

	count, err := repo.CountByNumberPrefix(ctx, "RET-20260302")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
