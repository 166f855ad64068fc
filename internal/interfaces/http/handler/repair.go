package handler

import (
	repairapp "github.com/fixdesk/backend/internal/application/repair"
	"github.com/gin-gonic/gin"
)

// RepairHandler exposes ticket part usage and the device lifecycle
type RepairHandler struct {
	BaseHandler
	usages  *repairapp.PartUsageService
	devices *repairapp.DeviceService
}

// NewRepairHandler creates a new RepairHandler
func NewRepairHandler(usages *repairapp.PartUsageService, devices *repairapp.DeviceService) *RepairHandler {
	return &RepairHandler{usages: usages, devices: devices}
}

// RegisterRoutes mounts the endpoints under /tickets, /part-usages and /devices
func (h *RepairHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tickets/:id/parts", h.ListTicketParts)

	u := rg.Group("/part-usages")
	u.POST("", h.Consume)
	u.PUT("/:id", h.ChangeQuantity)
	u.DELETE("/:id", h.Remove)

	d := rg.Group("/devices")
	d.POST("", h.RegisterDevice)
	d.GET("/:id", h.GetDevice)
	d.PUT("/:id/status", h.ChangeDeviceStatus)
}

// Consume takes a part out of stock for a repair ticket
// POST /part-usages
func (h *RepairHandler) Consume(c *gin.Context) {
	var req repairapp.ConsumePartRequest
	if !h.BindJSON(c, &req) {
		return
	}
	usage, err := h.usages.Consume(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, usage)
}

// ChangeQuantity moves stock by the difference to the new quantity
// PUT /part-usages/:id
func (h *RepairHandler) ChangeQuantity(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req repairapp.ChangeQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	usage, err := h.usages.ChangeQuantity(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, usage)
}

// Remove deletes a usage and returns its parts to stock
// DELETE /part-usages/:id
func (h *RepairHandler) Remove(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.usages.Remove(c.Request.Context(), id, h.Actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListTicketParts returns the parts used on a ticket
// GET /tickets/:id/parts
func (h *RepairHandler) ListTicketParts(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	usages, err := h.usages.ListByTicket(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, usages)
}

// RegisterDevice records a device handed in for repair
// POST /devices
func (h *RepairHandler) RegisterDevice(c *gin.Context) {
	var req repairapp.RegisterDeviceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	device, err := h.devices.Register(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, device)
}

// GetDevice returns a device
// GET /devices/:id
func (h *RepairHandler) GetDevice(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	device, err := h.devices.GetDevice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}

// ChangeDeviceStatus moves a device through its repair states
// PUT /devices/:id/status
func (h *RepairHandler) ChangeDeviceStatus(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req repairapp.ChangeDeviceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	device, err := h.devices.ChangeStatus(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}
