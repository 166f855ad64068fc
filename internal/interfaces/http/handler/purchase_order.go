package handler

import (
	tradeapp "github.com/fixdesk/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// PurchaseOrderHandler exposes purchase orders and their receipt
type PurchaseOrderHandler struct {
	BaseHandler
	orders *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders}
}

// RegisterRoutes mounts the endpoints under /purchase-orders
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/purchase-orders")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/send", h.MarkSent)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/receive", h.Receive)
}

// Create opens a draft purchase order
// POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get returns a purchase order
// GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List returns purchase orders, newest first
// GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	p, size := paging(c)
	page, err := h.orders.List(c.Request.Context(), p, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// MarkSent moves a draft order to sent
// POST /purchase-orders/:id/send
func (h *PurchaseOrderHandler) MarkSent(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.MarkSent(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order that has not been received
// POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelPurchaseOrderRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receive books the ordered stock and reconciles costs. With open_invoice
// the supplier invoice is opened in the same transaction.
// POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ReceivePurchaseOrderRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.orders.MarkReceived(c.Request.Context(), id, h.Actor(c), req.OpenInvoice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
