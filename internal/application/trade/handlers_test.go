package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrderReceiver struct {
	mock.Mock
}

func (m *MockOrderReceiver) MarkReceived(ctx context.Context, orderID uuid.UUID, actor string, openInvoice bool) (*ReceiveResultResponse, error) {
	args := m.Called(ctx, orderID, actor, openInvoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReceiveResultResponse), args.Error(1)
}

type MockReturnApprover struct {
	mock.Mock
}

func (m *MockReturnApprover) Approve(ctx context.Context, returnID uuid.UUID, actor string) (*PurchaseReturnResponse, error) {
	args := m.Called(ctx, returnID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PurchaseReturnResponse), args.Error(1)
}

func TestPurchaseOrderReceivedHandler_Handle(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	event := trade.NewPurchaseOrderReceivedEvent(orderID, "bob", true)

	tests := []struct {
		name    string
		result  *ReceiveResultResponse
		err     error
		wantErr bool
	}{
		{"received", &ReceiveResultResponse{Order: PurchaseOrderResponse{OrderNumber: "PO-20260302-1"}}, nil, false},
		{"already received", nil, shared.NewInvalidStateError("INVALID_STATE", "received"), false},
		{"missing order", nil, shared.NewNotFoundError("PurchaseOrder", orderID), true},
		{"infrastructure failure", nil, errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderReceiver)
			if tt.result != nil {
				orders.On("MarkReceived", ctx, orderID, "bob", true).Return(tt.result, nil)
			} else {
				orders.On("MarkReceived", ctx, orderID, "bob", true).Return(nil, tt.err)
			}

			h := NewPurchaseOrderReceivedHandler(orders, zap.NewNop())
			assert.Equal(t, []string{trade.EventTypePurchaseOrderReceived}, h.EventTypes())

			err := h.Handle(ctx, event)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			orders.AssertExpectations(t)
		})
	}
}

func TestPurchaseReturnApprovedHandler_Handle(t *testing.T) {
	ctx := context.Background()
	returnID := uuid.New()

	t.Run("approves", func(t *testing.T) {
		returns := new(MockReturnApprover)
		returns.On("Approve", ctx, returnID, "manager").Return(&PurchaseReturnResponse{ReturnNumber: "RET-20260302-1"}, nil)

		h := NewPurchaseReturnApprovedHandler(returns, zap.NewNop())
		require.NoError(t, h.Handle(ctx, trade.NewPurchaseReturnApprovedEvent(returnID, "manager")))
		returns.AssertExpectations(t)
	})

	t.Run("already approved is skipped", func(t *testing.T) {
		returns := new(MockReturnApprover)
		returns.On("Approve", ctx, returnID, "manager").Return(nil, shared.NewInvalidStateError("INVALID_STATE", "approved"))

		h := NewPurchaseReturnApprovedHandler(returns, zap.NewNop())
		assert.NoError(t, h.Handle(ctx, trade.NewPurchaseReturnApprovedEvent(returnID, "manager")))
	})

	t.Run("wrong event type", func(t *testing.T) {
		returns := new(MockReturnApprover)
		h := NewPurchaseReturnApprovedHandler(returns, zap.NewNop())

		err := h.Handle(ctx, trade.NewPurchaseOrderReceivedEvent(uuid.New(), "bob", false))
		require.Error(t, err)
		returns.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandlers_WithServices(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	supplierID := uuid.New()
	partID := f.createPart(t, "Galaxy S21 Screen", 0, 20)
	order := f.createOrder(t, supplierID, CreatePurchaseOrderItemInput{PartID: partID, Quantity: 6})

	received := NewPurchaseOrderReceivedHandler(f.orders, zap.NewNop())
	require.NoError(t, received.Handle(ctx, trade.NewPurchaseOrderReceivedEvent(order.ID, "bob", false)))
	require.NoError(t, received.Handle(ctx, trade.NewPurchaseOrderReceivedEvent(order.ID, "bob", false)))
	assert.Equal(t, 6, f.stock(t, partID))

	ret := f.createReturn(t, supplierID, &order.ID, partID, 2)
	approved := NewPurchaseReturnApprovedHandler(f.returns, zap.NewNop())
	require.NoError(t, approved.Handle(ctx, trade.NewPurchaseReturnApprovedEvent(ret.ID, "manager")))
	require.NoError(t, approved.Handle(ctx, trade.NewPurchaseReturnApprovedEvent(ret.ID, "manager")))
	assert.Equal(t, 4, f.stock(t, partID))
}
