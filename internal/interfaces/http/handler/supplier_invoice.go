package handler

import (
	financeapp "github.com/fixdesk/backend/internal/application/finance"
	"github.com/fixdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SupplierInvoiceHandler exposes accounts payable
type SupplierInvoiceHandler struct {
	BaseHandler
	invoices *financeapp.SupplierInvoiceService
}

// NewSupplierInvoiceHandler creates a new SupplierInvoiceHandler
func NewSupplierInvoiceHandler(invoices *financeapp.SupplierInvoiceService) *SupplierInvoiceHandler {
	return &SupplierInvoiceHandler{invoices: invoices}
}

// RegisterRoutes mounts the endpoints under /supplier-invoices
func (h *SupplierInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/supplier-invoices")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/overdue", h.ListOverdue)
	g.GET("/:id", h.Get)
	g.GET("/:id/outstanding", h.GetOutstanding)
	g.GET("/:id/payments", h.ListPayments)
	g.POST("/:id/payments", h.RecordPayment)
	g.PUT("/payments/:id", h.UpdatePayment)
	g.DELETE("/payments/:id", h.DeletePayment)
}

// Create registers a supplier invoice
// POST /supplier-invoices
func (h *SupplierInvoiceHandler) Create(c *gin.Context) {
	var req financeapp.CreateSupplierInvoiceRequest
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

// Get returns a supplier invoice
// GET /supplier-invoices/:id
func (h *SupplierInvoiceHandler) Get(c *gin.Context) {
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

// List returns supplier invoices, optionally by supplier and status
// GET /supplier-invoices?supplier_id=&status=
func (h *SupplierInvoiceHandler) List(c *gin.Context) {
	filter := financeapp.SupplierInvoiceListFilter{Status: c.Query("status")}
	filter.Page, filter.PageSize = paging(c)
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid supplier_id: must be a UUID")
			return
		}
		filter.SupplierID = &id
	}
	page, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// ListOverdue returns invoices marked overdue
// GET /supplier-invoices/overdue
func (h *SupplierInvoiceHandler) ListOverdue(c *gin.Context) {
	p, size := paging(c)
	page, err := h.invoices.ListOverdue(c.Request.Context(), p, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetOutstanding returns what is still owed to the supplier
// GET /supplier-invoices/:id/outstanding
func (h *SupplierInvoiceHandler) GetOutstanding(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.invoices.GetOutstanding(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// ListPayments returns the payments made against an invoice
// GET /supplier-invoices/:id/payments
func (h *SupplierInvoiceHandler) ListPayments(c *gin.Context) {
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

// RecordPayment books a payment to the supplier
// POST /supplier-invoices/:id/payments
func (h *SupplierInvoiceHandler) RecordPayment(c *gin.Context) {
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

// UpdatePayment replaces a supplier payment
// PUT /supplier-invoices/payments/:id
func (h *SupplierInvoiceHandler) UpdatePayment(c *gin.Context) {
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

// DeletePayment removes a supplier payment
// DELETE /supplier-invoices/payments/:id
func (h *SupplierInvoiceHandler) DeletePayment(c *gin.Context) {
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
