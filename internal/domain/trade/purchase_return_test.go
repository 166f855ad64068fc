package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReturn(t *testing.T, supplierID uuid.UUID) *PurchaseReturn {
	t.Helper()
	r, err := NewPurchaseReturn("PR-1", supplierID, nil, "defective batch")
	require.NoError(t, err)
	return r
}

func TestPurchaseReturn_StateMachine(t *testing.T) {
	now := time.Now()

	t.Run("draft approved completed", func(t *testing.T) {
		r := newTestReturn(t, uuid.New())
		_, err := r.AddItem(uuid.New(), 2, decimal.NewFromInt(20), ConditionDefective)
		require.NoError(t, err)
		assert.Equal(t, "40", r.TotalAmount.String())
		assert.False(t, r.CanIssueCredit())

		require.NoError(t, r.Approve("manager", now))
		assert.Equal(t, "manager", r.ApprovedBy)
		assert.True(t, r.CanIssueCredit())

		err = r.Approve("manager", now)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))

		require.NoError(t, r.Complete(now))
		assert.True(t, r.CanIssueCredit())
		_, err = r.Reject("manager", "late", now)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("draft cannot complete", func(t *testing.T) {
		r := newTestReturn(t, uuid.New())
		assert.True(t, errors.Is(r.Complete(now), shared.ErrInvalidState))
	})

	t.Run("empty return cannot be approved", func(t *testing.T) {
		r := newTestReturn(t, uuid.New())
		assert.True(t, errors.Is(r.Approve("manager", now), shared.ErrValidation))
	})

	t.Run("reject reports prior approval", func(t *testing.T) {
		r := newTestReturn(t, uuid.New())
		_, err := r.AddItem(uuid.New(), 1, decimal.NewFromInt(5), "")
		require.NoError(t, err)
		assert.Equal(t, ConditionOther, r.Items[0].Condition)

		wasApproved, err := r.Reject("manager", "changed mind", now)
		require.NoError(t, err)
		assert.False(t, wasApproved)

		r2 := newTestReturn(t, uuid.New())
		_, err = r2.AddItem(uuid.New(), 1, decimal.NewFromInt(5), ConditionExcess)
		require.NoError(t, err)
		require.NoError(t, r2.Approve("manager", now))
		wasApproved, err = r2.Reject("manager", "supplier refused", now)
		require.NoError(t, err)
		assert.True(t, wasApproved)
	})
}

func TestPurchaseReturn_ValidateAgainstOrder(t *testing.T) {
	supplierID := uuid.New()
	partID := uuid.New()

	po, err := NewPurchaseOrder("PO-1", supplierID, "")
	require.NoError(t, err)
	_, err = po.AddItem(partID, 20, decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, po.Receive("alice", time.Now()))

	t.Run("within received quantity", func(t *testing.T) {
		r := newTestReturn(t, supplierID)
		_, err := r.AddItem(partID, 2, decimal.NewFromInt(20), ConditionDefective)
		require.NoError(t, err)
		assert.NoError(t, r.ValidateAgainstOrder(po, nil))
	})

	t.Run("beyond received quantity counting earlier returns", func(t *testing.T) {
		r := newTestReturn(t, supplierID)
		_, err := r.AddItem(partID, 5, decimal.NewFromInt(20), ConditionDefective)
		require.NoError(t, err)
		err = r.ValidateAgainstOrder(po, map[uuid.UUID]int{partID: 16})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("part not on order", func(t *testing.T) {
		r := newTestReturn(t, supplierID)
		_, err := r.AddItem(uuid.New(), 1, decimal.NewFromInt(20), ConditionDefective)
		require.NoError(t, err)
		assert.True(t, errors.Is(r.ValidateAgainstOrder(po, nil), shared.ErrValidation))
	})

	t.Run("different supplier", func(t *testing.T) {
		r := newTestReturn(t, uuid.New())
		_, err := r.AddItem(partID, 1, decimal.NewFromInt(20), ConditionDefective)
		require.NoError(t, err)
		assert.True(t, errors.Is(r.ValidateAgainstOrder(po, nil), shared.ErrValidation))
	})
}
