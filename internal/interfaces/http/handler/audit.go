package handler

import (
	appaudit "github.com/fixdesk/backend/internal/application/audit"
	domainaudit "github.com/fixdesk/backend/internal/domain/audit"
	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler lists the audit trail
type AuditHandler struct {
	BaseHandler
	trail *appaudit.Trail
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(trail *appaudit.Trail) *AuditHandler {
	return &AuditHandler{trail: trail}
}

// RegisterRoutes mounts GET /audit-entries
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit-entries", h.List)
}

// List returns audit entries, newest first
// GET /audit-entries?entity_table=&entity_id=&actor=&action=
func (h *AuditHandler) List(c *gin.Context) {
	filter := domainaudit.Filter{
		Filter:      shared.DefaultFilter(),
		EntityTable: c.Query("entity_table"),
		Actor:       c.Query("actor"),
		Action:      domainaudit.Action(c.Query("action")),
	}
	filter.Page, filter.PageSize = paging(c)
	if raw := c.Query("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid entity_id: must be a UUID")
			return
		}
		filter.EntityID = &id
	}

	page, err := h.trail.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}
