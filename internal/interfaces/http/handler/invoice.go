package handler

import (
	financeapp "github.com/fixdesk/backend/internal/application/finance"
	"github.com/fixdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler exposes customer billing
type InvoiceHandler struct {
	BaseHandler
	invoices *financeapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *financeapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// RegisterRoutes mounts the invoice endpoints under /invoices and /payments
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/invoices")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/balance", h.GetBalance)
	g.GET("/:id/payments", h.ListPayments)
	g.POST("/:id/payments", h.RecordPayment)
	g.POST("/:id/recompute", h.Recompute)
	g.POST("/:id/items", h.AddItem)
	g.DELETE("/:id/items/:itemId", h.RemoveItem)
	g.POST("/:id/refund", h.MarkRefunded)

	p := rg.Group("/payments")
	p.PUT("/:id", h.UpdatePayment)
	p.DELETE("/:id", h.DeletePayment)
}

// Create opens a customer invoice
// POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req financeapp.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.CreateInvoice(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get returns an invoice with its items
// GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// List returns invoices, optionally by customer and payment status
// GET /invoices?customer_id=&status=
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := financeapp.InvoiceListFilter{Status: c.Query("status")}
	filter.Page, filter.PageSize = paging(c)
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid customer_id: must be a UUID")
			return
		}
		filter.CustomerID = &id
	}
	page, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetBalance returns what is still owed on an invoice
// GET /invoices/:id/balance
func (h *InvoiceHandler) GetBalance(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	balance, err := h.invoices.GetBalanceDue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListPayments returns the payments of an invoice
// GET /invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	payments, err := h.invoices.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecordPayment books a customer payment
// POST /invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req financeapp.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.RecordPayment(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// UpdatePayment replaces a payment and recomputes its invoice
// PUT /payments/:id
func (h *InvoiceHandler) UpdatePayment(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req financeapp.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.UpdatePayment(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// DeletePayment removes a payment and recomputes its invoice
// DELETE /payments/:id
func (h *InvoiceHandler) DeletePayment(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.DeletePayment(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Recompute derives paid amount and status from the stored payments
// POST /invoices/:id/recompute
func (h *InvoiceHandler) Recompute(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.RecomputeStatus(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// AddItem appends a billed line
// POST /invoices/:id/items
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req financeapp.InvoiceItemInput
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.AddItem(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// RemoveItem drops a billed line
// DELETE /invoices/:id/items/:itemId
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.PathUUID(c, "itemId")
	if !ok {
		return
	}
	inv, err := h.invoices.RemoveItem(c.Request.Context(), id, itemID, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// MarkRefunded records that a paid invoice was refunded
// POST /invoices/:id/refund
func (h *InvoiceHandler) MarkRefunded(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.MarkRefunded(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}
