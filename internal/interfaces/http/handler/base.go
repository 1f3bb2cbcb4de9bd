// Package handler exposes the storefront use cases over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gastroshop/storefront/internal/domain/checkout"
	"github.com/gastroshop/storefront/internal/domain/shared"
	"github.com/gastroshop/storefront/internal/infrastructure/logger"
	"github.com/gastroshop/storefront/internal/infrastructure/storefront"
	"github.com/gastroshop/storefront/internal/interfaces/http/dto"
	"github.com/gastroshop/storefront/internal/interfaces/http/middleware"
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

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BindError answers a request body that could not be bound
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", middleware.GetRequestID(c), details))
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Malformed request body")
}

// HandleError converts domain and adapter errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		details := make([]dto.ValidationDetail, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			details = append(details, dto.ValidationDetail{Field: f.Field, Message: f.Message})
		}
		resp := dto.NewValidationErrorResponse(validationErr.Message, requestID, details)
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var reconcileErr *checkout.ReconciliationError
	if errors.As(err, &reconcileErr) {
		resp := dto.NewErrorResponseWithRequestID(reconcileErr.Code, reconcileErr.Message, requestID)
		resp.Error.Unresolved = reconcileErr.Unresolved
		c.JSON(dto.GetHTTPStatus(reconcileErr.Code), resp)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	if errors.Is(err, storefront.ErrServiceUnavailable) || errors.Is(err, storefront.ErrRequestFailed) {
		logger.GetGinLogger(c).Warn("Storefront API call failed", zap.Error(err))
		h.Error(c, http.StatusBadGateway, dto.ErrCodeServiceUnavailable, "The store is temporarily unavailable")
		return
	}

	logger.GetGinLogger(c).Error("Unexpected error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
