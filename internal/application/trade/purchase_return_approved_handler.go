package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnApprover approves purchase returns
type ReturnApprover interface {
	Approve(ctx context.Context, returnID uuid.UUID, actor string) (*PurchaseReturnResponse, error)
}

// PurchaseReturnApprovedHandler handles PurchaseReturnApprovedEvent
type PurchaseReturnApprovedHandler struct {
	returns ReturnApprover
	logger  *zap.Logger
}

// NewPurchaseReturnApprovedHandler creates a new handler for purchase return approved events
func NewPurchaseReturnApprovedHandler(returns ReturnApprover, logger *zap.Logger) *PurchaseReturnApprovedHandler {
	return &PurchaseReturnApprovedHandler{
		returns: returns,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseReturnApprovedHandler) EventTypes() []string {
	return []string{trade.EventTypePurchaseReturnApproved}
}

// Handle approves the return, taking its parts out of stock. A return that
// is no longer a draft counts as processed.
func (h *PurchaseReturnApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approvedEvent, ok := event.(*trade.PurchaseReturnApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypePurchaseReturnApproved, event.EventType())
	}

	ret, err := h.returns.Approve(ctx, approvedEvent.ReturnID, approvedEvent.Actor)
	if errors.Is(err, shared.ErrInvalidState) {
		h.logger.Warn("purchase return not approvable, skipping",
			zap.String("return_id", approvedEvent.ReturnID.String()),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to approve purchase return %s: %w", approvedEvent.ReturnID, err)
	}

	h.logger.Info("purchase return approved from event",
		zap.String("return_number", ret.ReturnNumber),
	)
	return nil
}

var _ shared.EventHandler = (*PurchaseReturnApprovedHandler)(nil)
