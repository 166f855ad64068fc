package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newMemoryStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_DuplicateSkipped(t *testing.T) {
	inner := newTestHandler("PartConsumed")
	h := NewIdempotentHandler(inner, newMemoryStore(t), shared.DefaultIdempotencyConfig(), zap.NewNop())
	event := newTestEvent("PartConsumed")

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, 1, inner.count())
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, h.Stats())
	assert.Equal(t, []string{"PartConsumed"}, h.EventTypes())
}

func TestIdempotentHandler_FailureAllowsRedelivery(t *testing.T) {
	inner := newTestHandler("PaymentRecorded")
	inner.err = errors.New("invoice locked")
	h := NewIdempotentHandler(inner, newMemoryStore(t), shared.DefaultIdempotencyConfig(), zap.NewNop())
	event := newTestEvent("PaymentRecorded")

	require.Error(t, h.Handle(context.Background(), event))

	inner.err = nil
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, int64(1), h.Stats().EventsFailed)
	assert.Equal(t, int64(1), h.Stats().EventsProcessed)
}

func TestIdempotentHandler_FailureKeepsMarkerWithoutRetry(t *testing.T) {
	inner := newTestHandler("PaymentRecorded")
	inner.err = errors.New("boom")
	cfg := shared.DefaultIdempotencyConfig()
	cfg.RetryOnFailure = false
	h := NewIdempotentHandler(inner, newMemoryStore(t), cfg, zap.NewNop())
	event := newTestEvent("PaymentRecorded")

	require.Error(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Equal(t, 1, inner.count())
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(MockIdempotencyStore)
	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

	inner := newTestHandler("PartConsumed")
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), newTestEvent("PartConsumed")))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := newTestHandler("PartConsumed")
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{Enabled: false}, zap.NewNop())
	event := newTestEvent("PartConsumed")

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, 2, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribeIdempotent(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	inner := newTestHandler("PartConsumed")
	wrapped := SubscribeIdempotent(bus, newMemoryStore(t), shared.DefaultIdempotencyConfig(), zap.NewNop(), inner)
	require.Len(t, wrapped, 1)

	event := newTestEvent("PartConsumed")
	require.NoError(t, bus.Publish(context.Background(), event))
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, 1, inner.count())
}
