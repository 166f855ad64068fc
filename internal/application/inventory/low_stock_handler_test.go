package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []*inventory.StockBelowMinimumEvent
	err    error
}

func (n *recordingNotifier) NotifyLowStock(ctx context.Context, e *inventory.StockBelowMinimumEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, e)
	return n.err
}

func lowStockEvent(stock int) *inventory.StockBelowMinimumEvent {
	part, _ := inventory.NewPart("iPhone 13 Battery", "Apple", "Battery", "", decimal.Zero, decimal.Zero, 5)
	part.ID = uuid.New()
	part.SKU = "APP-BAT-13XX-01"
	part.CurrentStock = stock
	return inventory.NewStockBelowMinimumEvent(part)
}

func TestLowStockHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	notifier := &recordingNotifier{}
	handler := NewLowStockHandler(zap.New(core)).WithNotifier(notifier)

	require.NoError(t, handler.Handle(context.Background(), lowStockEvent(3)))
	require.NoError(t, handler.Handle(context.Background(), lowStockEvent(0)))

	require.Len(t, notifier.alerts, 2)
	entries := logs.FilterMessage("part stock below minimum").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "low_stock", entries[0].ContextMap()["alert"])
	assert.Equal(t, "out_of_stock", entries[1].ContextMap()["alert"])
}

func TestLowStockHandler_NotifierFailureIsSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := NewLowStockHandler(zap.New(core)).WithNotifier(&recordingNotifier{err: errors.New("smtp down")})

	require.NoError(t, handler.Handle(context.Background(), lowStockEvent(1)))
	assert.Equal(t, 1, logs.FilterMessage("failed to send low stock alert").Len())
}

func TestLowStockHandler_RejectsOtherEvents(t *testing.T) {
	handler := NewLowStockHandler(zap.NewNop())
	other := shared.NewBaseDomainEvent("repair.PartConsumed", "RepairTicket", uuid.New())

	err := handler.Handle(context.Background(), &other)
	assert.Error(t, err)
	assert.Equal(t, []string{inventory.EventTypeStockBelowMinimum}, handler.EventTypes())
}
