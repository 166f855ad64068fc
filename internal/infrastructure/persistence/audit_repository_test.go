package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAuditRepository_AppendAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAuditRepository(newTestDB(t))
	partID := uuid.New()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := audit.NewEntry("alice", audit.ActionStockAdjust, "parts", partID,
		audit.Snapshot{"current_stock": 10}, audit.Snapshot{"current_stock": 7})
	first.Timestamp = base
	second := audit.NewEntry("bob", audit.ActionCostChange, "parts", partID,
		audit.Snapshot{"cost_price": "20"}, audit.Snapshot{"cost_price": "22"})
	second.Timestamp = base.Add(time.Minute)
	other := audit.NewEntry("alice", audit.ActionCreate, "customer_invoices", uuid.New(), nil, audit.Snapshot{"total": "150"})
	other.Timestamp = base.Add(2 * time.Minute)

	require.NoError(t, repo.Append(ctx, first, second, other))
	require.NoError(t, repo.Append(ctx))

	page := shared.Filter{}.Normalize()
	entries, total, err := repo.FindAll(ctx, audit.Filter{Filter: page, EntityTable: "parts", EntityID: &partID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionCostChange, entries[0].Action, "newest first")
	assert.EqualValues(t, 10, entries[1].OldData["current_stock"])
	assert.EqualValues(t, 7, entries[1].NewData["current_stock"])

	byActor, total, err := repo.FindAll(ctx, audit.Filter{Filter: page, Actor: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Nil(t, byActor[0].OldData)

	_, total, err = repo.FindAll(ctx, audit.Filter{Filter: page, Action: audit.ActionExpire})
	require.NoError(t, err)
	assert.Zero(t, total)
}
