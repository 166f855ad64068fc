package repair

import (
	"context"
	"errors"
	"testing"

	"github.com/fixdesk/backend/internal/application/inventory"
	domaininventory "github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/repair"
	"github.com/fixdesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPartConsumer struct {
	mock.Mock
}

func (m *MockPartConsumer) Consume(ctx context.Context, req ConsumePartRequest, actor string) (*UsageResponse, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UsageResponse), args.Error(1)
}

func TestPartConsumedHandler_EventTypes(t *testing.T) {
	h := NewPartConsumedHandler(new(MockPartConsumer), zap.NewNop())
	assert.Equal(t, []string{repair.EventTypePartConsumed}, h.EventTypes())
}

func TestPartConsumedHandler_Handle(t *testing.T) {
	ticketID, partID := uuid.New(), uuid.New()
	evt := repair.NewPartConsumedEvent(ticketID, partID, 2, "bob")
	want := ConsumePartRequest{TicketID: ticketID, PartID: partID, Quantity: 2}

	t.Run("records the usage", func(t *testing.T) {
		consumer := new(MockPartConsumer)
		consumer.On("Consume", mock.Anything, want, "bob").
			Return(&UsageResponse{ID: uuid.New(), StockAfter: 3}, nil).Once()

		err := NewPartConsumedHandler(consumer, zap.NewNop()).Handle(context.Background(), evt)
		require.NoError(t, err)
		consumer.AssertExpectations(t)
	})

	t.Run("propagates failures", func(t *testing.T) {
		consumer := new(MockPartConsumer)
		consumer.On("Consume", mock.Anything, want, "bob").Return(nil, errors.New("db down")).Once()

		err := NewPartConsumedHandler(consumer, zap.NewNop()).Handle(context.Background(), evt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("rejects other events", func(t *testing.T) {
		consumer := new(MockPartConsumer)
		part, err := domaininventory.NewPart("LCD", "Apple", "Screen", "", decimal.Zero, decimal.Zero, 5)
		require.NoError(t, err)

		err = NewPartConsumedHandler(consumer, zap.NewNop()).Handle(context.Background(), domaininventory.NewStockBelowMinimumEvent(part))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
		consumer.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPartConsumedHandler_WithService(t *testing.T) {
	h := testutil.NewHarness(t)
	ledger := inventory.NewLedger(true)
	parts := inventory.NewPartService(h.Runner, ledger, h.Repos, inventory.PartServiceConfig{BarcodeAttempts: 3}, h.Logger)
	handler := NewPartConsumedHandler(NewPartUsageService(h.Runner, ledger, h.Repos, h.Logger), h.Logger)

	part, err := parts.Create(context.Background(), inventory.CreatePartRequest{
		Name: "Battery", Brand: "Apple", Category: "Power", SKU: "APP-POW-BATT-01", Barcode: "PAR-APP000-0001",
		InitialStock: 4,
	}, "alice")
	require.NoError(t, err)

	require.NoError(t, handler.Handle(context.Background(), repair.NewPartConsumedEvent(uuid.New(), part.ID, 1, "bob")))

	got, err := parts.GetPart(context.Background(), part.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStock)
}
