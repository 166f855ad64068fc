package handler

import (
	inventoryapp "github.com/fixdesk/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// PartHandler exposes the part stock ledger and price history
type PartHandler struct {
	BaseHandler
	parts *inventoryapp.PartService
}

// NewPartHandler creates a new PartHandler
func NewPartHandler(parts *inventoryapp.PartService) *PartHandler {
	return &PartHandler{parts: parts}
}

// RegisterRoutes mounts the part endpoints under /parts
func (h *PartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/parts")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/low-stock", h.ListLowStock)
	g.GET("/sku/:sku", h.GetBySKU)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/adjustments", h.Adjust)
	g.PUT("/:id/cost", h.SetCost)
	g.POST("/:id/deactivate", h.Deactivate)
	g.POST("/:id/reactivate", h.Reactivate)
	g.GET("/:id/movements", h.ListMovements)
	g.GET("/:id/price-history", h.ListPriceHistory)
	g.GET("/:id/reconciliation", h.Reconcile)
	g.POST("/:id/rebuild", h.Rebuild)
}

// Create registers a part
// POST /parts
func (h *PartHandler) Create(c *gin.Context) {
	var req inventoryapp.CreatePartRequest
	if !h.BindJSON(c, &req) {
		return
	}
	part, err := h.parts.Create(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, part)
}

// Get returns a part
// GET /parts/:id
func (h *PartHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	part, err := h.parts.GetPart(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// GetBySKU returns a part by SKU
// GET /parts/sku/:sku
func (h *PartHandler) GetBySKU(c *gin.Context) {
	part, err := h.parts.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// List returns parts matching the query
// GET /parts
func (h *PartHandler) List(c *gin.Context) {
	var filter inventoryapp.PartListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.parts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// ListLowStock returns active parts under their minimum level
// GET /parts/low-stock
func (h *PartHandler) ListLowStock(c *gin.Context) {
	p, size := paging(c)
	page, err := h.parts.ListLowStock(c.Request.Context(), p, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Update changes descriptive fields and optionally the cost
// PUT /parts/:id
func (h *PartHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdatePartRequest
	if !h.BindJSON(c, &req) {
		return
	}
	part, err := h.parts.Update(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// Adjust books a signed stock movement
// POST /parts/:id/adjustments
func (h *PartHandler) Adjust(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	part, err := h.parts.Adjust(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// SetCost changes the unit cost
// PUT /parts/:id/cost
func (h *PartHandler) SetCost(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.SetCostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	part, err := h.parts.SetCost(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// Deactivate soft-deletes a part
// POST /parts/:id/deactivate
func (h *PartHandler) Deactivate(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.parts.Deactivate(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reactivate restores a deactivated part
// POST /parts/:id/reactivate
func (h *PartHandler) Reactivate(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.parts.Reactivate(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMovements returns the stock ledger of a part
// GET /parts/:id/movements
func (h *PartHandler) ListMovements(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	p, size := paging(c)
	page, err := h.parts.ListMovements(c.Request.Context(), id, p, size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// ListPriceHistory returns the cost changes of a part
// GET /parts/:id/price-history
func (h *PartHandler) ListPriceHistory(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.parts.ListPriceHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Reconcile compares stored stock with the ledger sum
// GET /parts/:id/reconciliation
func (h *PartHandler) Reconcile(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.parts.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Rebuild resets stored stock to the ledger sum
// POST /parts/:id/rebuild
func (h *PartHandler) Rebuild(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.parts.Rebuild(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
