package handler

import (
	"io"
	"slices"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/event"
	"github.com/fixdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler accepts inbound domain events over HTTP and hands them to the
// event bus. Redelivered events are absorbed by the idempotent subscribers.
type EventHandler struct {
	BaseHandler
	serializer *event.EventSerializer
	publisher  shared.EventPublisher
	accepted   []string
}

// NewEventHandler creates an EventHandler accepting event.InboundEventTypes
func NewEventHandler(serializer *event.EventSerializer, publisher shared.EventPublisher) *EventHandler {
	return &EventHandler{
		serializer: serializer,
		publisher:  publisher,
		accepted:   event.InboundEventTypes,
	}
}

// RegisterRoutes mounts POST /events/:type
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events/:type", h.Ingest)
}

// IngestResponse acknowledges an accepted event
type IngestResponse struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
}

// Ingest decodes and publishes one event. Its handlers run synchronously,
// so their failure is the response.
// POST /events/:type
func (h *EventHandler) Ingest(c *gin.Context) {
	eventType := c.Param("type")
	if !slices.Contains(h.accepted, eventType) {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Unsupported event type: "+eventType)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Failed to read request body")
		return
	}
	evt, err := h.serializer.Deserialize(eventType, body)
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if evt.EventID() == uuid.Nil {
		h.BadRequest(c, dto.ErrCodeValidation, "Event id is required")
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), evt); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, IngestResponse{EventID: evt.EventID(), EventType: evt.EventType()})
}
