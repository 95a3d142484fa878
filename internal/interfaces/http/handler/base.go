package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/interfaces/http/dto"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common response utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// HandleError converts a domain error into the mapped HTTP response; anything
// else becomes a 500 without leaking internals
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}

// parseID binds and parses the :id path parameter
func parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Invalid ID format", middleware.GetRequestID(c)))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Invalid ID format", middleware.GetRequestID(c)))
		return uuid.Nil, false
	}
	return id, true
}
