package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fixdesk/backend/internal/domain/shared"
	"github.com/fixdesk/backend/internal/infrastructure/logger"
	"github.com/fixdesk/backend/internal/interfaces/http/dto"
	"github.com/fixdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorInfo{
		Code:    code,
		Message: message,
	}, middleware.GetRequestID(c)))
}

// HandleError maps err onto a response. Domain errors keep their kind and
// message; anything else is logged and answered with an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	status, info := dto.ErrorInfoFor(err)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context(), nil).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(info, middleware.GetRequestID(c)))
}

// BindJSON decodes the request body into req, answering 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON decodes the body when there is one; an empty body
// leaves req at its zero value
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	h.BadRequest(c, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
	return false
}

// PathUUID parses the named path parameter, answering 400 when it is not a UUID
func (h *BaseHandler) PathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// BindQuery decodes query parameters into filter, answering 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, filter any) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid query: "+err.Error())
		return false
	}
	return true
}

// Actor returns who is acting on this request
func (h *BaseHandler) Actor(c *gin.Context) string {
	return middleware.GetActor(c)
}

// paging reads page and page_size. Out of range values are normalized by
// the services.
func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return page, pageSize
}

// respondPage sends a paginated result
func respondPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
