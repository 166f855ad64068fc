package trade

import (
	"context"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository persists purchase orders with their items
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, int64, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
}

// PurchaseReturnRepository persists purchase returns with their items
type PurchaseReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseReturn, error)
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseReturn, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseReturn, int64, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, ret *PurchaseReturn) error
}
