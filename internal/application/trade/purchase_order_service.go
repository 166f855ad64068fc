package trade

import (
	"context"
	"fmt"

	"github.com/fixdesk/backend/internal/application/common"
	"github.com/fixdesk/backend/internal/application/finance"
	"github.com/fixdesk/backend/internal/application/inventory"
	"github.com/fixdesk/backend/internal/domain/audit"
	domaininventory "github.com/fixdesk/backend/internal/domain/inventory"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const purchaseOrdersTable = "purchase_orders"

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	runner    *common.Runner
	ledger    *inventory.Ledger
	suppliers *finance.SupplierInvoiceService
	repos     common.Repositories
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	runner *common.Runner,
	ledger *inventory.Ledger,
	suppliers *finance.SupplierInvoiceService,
	repos common.Repositories,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		runner:    runner,
		ledger:    ledger,
		suppliers: suppliers,
		repos:     repos,
		logger:    logger,
	}
}

// Create creates a new draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest, actor string) (*PurchaseOrderResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	var order *trade.PurchaseOrder
	err := s.runner.Run(ctx, func(w *common.Work) error {
		repo := w.Repos.PurchaseOrderRepo()
		number, err := common.NextNumber(ctx, "PO", w.Now, repo.CountByNumberPrefix)
		if err != nil {
			return err
		}

		order, err = trade.NewPurchaseOrder(number, req.SupplierID, req.Notes)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if _, err := w.Repos.PartRepo().FindByID(ctx, item.PartID); err != nil {
				return err
			}
			if _, err := order.AddItem(item.PartID, item.Quantity, item.UnitCost); err != nil {
				return err
			}
		}
		order.CreatedAt = w.Now
		order.UpdatedAt = w.Now

		if err := repo.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		w.Audit(actor, audit.ActionCreate, purchaseOrdersTable, order.ID, nil, order.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// MarkSent records that the order went out to the supplier
func (s *PurchaseOrderService) MarkSent(ctx context.Context, orderID uuid.UUID, actor string) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, orderID, actor, audit.ActionStatus, func(w *common.Work, order *trade.PurchaseOrder) error {
		return order.MarkSent(w.Now)
	})
}

// Cancel cancels an order that has not been received
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelPurchaseOrderRequest, actor string) (*PurchaseOrderResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, actor, audit.ActionStatus, func(w *common.Work, order *trade.PurchaseOrder) error {
		return order.Cancel(req.Reason, w.Now)
	})
}

func (s *PurchaseOrderService) transition(ctx context.Context, orderID uuid.UUID, actor string, action audit.Action, change func(*common.Work, *trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	var order *trade.PurchaseOrder
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		order, err = w.Repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		before := order.AuditSnapshot()
		if err := change(w, order); err != nil {
			return err
		}
		order.UpdatedAt = w.Now
		if err := w.Repos.PurchaseOrderRepo().Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		w.Audit(actor, action, purchaseOrdersTable, order.ID, before, order.AuditSnapshot())
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// MarkReceived books every line into stock, reconciles each part's cost
// price with the line cost and, when openInvoice is set, opens a pending
// supplier invoice over the order total. All of it commits or none of it
// does. An order can be received once.
func (s *PurchaseOrderService) MarkReceived(ctx context.Context, orderID uuid.UUID, actor string, openInvoice bool) (*ReceiveResultResponse, error) {
	var (
		order   *trade.PurchaseOrder
		invoice *finance.SupplierInvoiceResponse
	)
	err := s.runner.Run(ctx, func(w *common.Work) error {
		var err error
		order, err = w.Repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		before := order.AuditSnapshot()
		if err := order.Receive(actor, w.Now); err != nil {
			return err
		}

		note := "Received on " + order.OrderNumber
		adjustments := make([]inventory.Adjustment, len(order.Items))
		for i, item := range order.Items {
			adjustments[i] = inventory.Adjustment{
				PartID:        item.PartID,
				Delta:         item.ReceivedQuantity,
				ReferenceType: domaininventory.ReferencePurchaseOrder,
				ReferenceID:   order.ID,
				Note:          note,
				Actor:         actor,
			}
		}
		if err := s.ledger.ApplyAll(ctx, w, adjustments); err != nil {
			return err
		}

		for _, item := range order.Items {
			if !item.UnitCost.IsPositive() {
				continue
			}
			if _, _, err := s.ledger.SetCost(ctx, w, item.PartID, item.UnitCost, "purchase order "+order.OrderNumber, actor); err != nil {
				return err
			}
		}

		order.UpdatedAt = w.Now
		if err := w.Repos.PurchaseOrderRepo().Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		w.Audit(actor, audit.ActionReceive, purchaseOrdersTable, order.ID, before, order.AuditSnapshot())

		if openInvoice && order.TotalAmount.IsPositive() {
			inv, err := s.suppliers.Open(ctx, w, finance.OpenInvoice{
				SupplierID:      order.SupplierID,
				PurchaseOrderID: &order.ID,
				TotalAmount:     order.TotalAmount,
				Notes:           "Opened on receipt of " + order.OrderNumber,
				Actor:           actor,
			})
			if err != nil {
				return err
			}
			resp := finance.ToSupplierInvoiceResponse(inv)
			invoice = &resp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order received",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(order.Items)),
		zap.Bool("invoice_opened", invoice != nil),
	)
	return &ReceiveResultResponse{
		Order:           ToPurchaseOrderResponse(order),
		SupplierInvoice: invoice,
	}, nil
}

// GetOrder retrieves a purchase order by ID
func (s *PurchaseOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.repos.PurchaseOrderRepo().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders, newest first
func (s *PurchaseOrderService) List(ctx context.Context, page, pageSize int) (shared.Paginated[PurchaseOrderResponse], error) {
	filter := shared.DefaultFilter()
	filter.Page = page
	filter.PageSize = pageSize
	filter = filter.Normalize()

	orders, total, err := s.repos.PurchaseOrderRepo().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[PurchaseOrderResponse]{}, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	items := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
