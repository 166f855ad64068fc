package handler

import (
	"strconv"
	"time"

	tradeapp "github.com/fixdesk/backend/internal/application/trade"
	"github.com/fixdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// defaultExpiringWithinDays is the look-ahead of the expiring credits listing
const defaultExpiringWithinDays = 30

// PurchaseReturnHandler exposes supplier returns and the credit notes they produce
type PurchaseReturnHandler struct {
	BaseHandler
	returns *tradeapp.ReturnService
}

// NewPurchaseReturnHandler creates a new PurchaseReturnHandler
func NewPurchaseReturnHandler(returns *tradeapp.ReturnService) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{returns: returns}
}

// RegisterRoutes mounts the endpoints under /purchase-returns and /credit-notes
func (h *PurchaseReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/purchase-returns")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/credit-note", h.GenerateCreditNote)

	cn := rg.Group("/credit-notes")
	cn.GET("/expiring", h.ListExpiring)
	cn.GET("/:id", h.GetCreditNote)
	cn.POST("/:id/apply", h.ApplyCredit)
}

// Create registers a pending return
// POST /purchase-returns
func (h *PurchaseReturnHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.returns.CreateReturn(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// Get returns a purchase return
// GET /purchase-returns/:id
func (h *PurchaseReturnHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.GetReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// List returns purchase returns, newest first
// GET /purchase-returns
func (h *PurchaseReturnHandler) List(c *gin.Context) {
	p, size := paging(c)
	page, err := h.returns.ListReturns(c.Request.Context(), p, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Approve takes the returned parts out of stock
// POST /purchase-returns/:id/approve
func (h *PurchaseReturnHandler) Approve(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.Approve(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Reject closes a return, restoring stock if it had been approved
// POST /purchase-returns/:id/reject
func (h *PurchaseReturnHandler) Reject(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RejectPurchaseReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.returns.Reject(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Complete closes an approved return and issues its credit note
// POST /purchase-returns/:id/complete
func (h *PurchaseReturnHandler) Complete(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.Complete(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// GenerateCreditNote returns the credit note of a completed return,
// issuing it on first call
// POST /purchase-returns/:id/credit-note
func (h *PurchaseReturnHandler) GenerateCreditNote(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	note, err := h.returns.GenerateCreditNote(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// GetCreditNote returns a credit note with its applications
// GET /credit-notes/:id
func (h *PurchaseReturnHandler) GetCreditNote(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	note, err := h.returns.GetCreditNote(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// ApplyCredit offsets a supplier invoice with part of a credit note
// POST /credit-notes/:id/apply
func (h *PurchaseReturnHandler) ApplyCredit(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ApplyCreditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.returns.ApplyCredit(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListExpiring returns open credit notes expiring within the given days
// GET /credit-notes/expiring?days=30
func (h *PurchaseReturnHandler) ListExpiring(c *gin.Context) {
	days := defaultExpiringWithinDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid days: must be a non-negative integer")
			return
		}
		days = n
	}
	notes, err := h.returns.ListExpiringCredits(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notes)
}
