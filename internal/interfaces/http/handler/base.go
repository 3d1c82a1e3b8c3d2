// Package handler implements the HTTP endpoints on top of the application
// services. Handlers bind and validate input, delegate to a service and map
// domain errors onto the wire envelope.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/skc/procurement/internal/domain/requisition"
	"github.com/skc/procurement/internal/domain/shared"
	"github.com/skc/procurement/internal/infrastructure/logger"
	"github.com/skc/procurement/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessList sends a success response with a total count
func (h *BaseHandler) SuccessList(c *gin.Context, data any, total int64) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError maps an error onto the wire. Domain errors carry their own
// code, which decides the status; anything else is an internal error and is
// logged with the request-scoped logger.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if domainErr.Field != "" {
			c.JSON(status, dto.NewFieldErrorResponse(
				domainErr.Code, domainErr.Message, domainErr.Field, domainErr.RejectedValue))
			return
		}
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "an unexpected error occurred"))
}

// pathID parses a numeric path parameter. Non-numeric values fail with
// INVALID_INPUT rather than leaking a routing 404; zero and negative ids
// parse fine and fall through to the store's not-found answer.
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewInvalidInputError("invalid "+name+" path parameter", name, raw)
	}
	return id, nil
}
