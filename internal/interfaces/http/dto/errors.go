package dto

import (
	"net/http"

	"github.com/gastroshop/storefront/internal/domain/checkout"
)

// Error codes returned by the local API. Domain error codes pass through unchanged.
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeOutOfStock         = "OUT_OF_STOCK"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	checkout.CodeAuthenticationRequired: http.StatusUnauthorized,
	ErrCodeNotFound:                     http.StatusNotFound,
	checkout.CodeCheckoutInProgress:     http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:               http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:                 http.StatusUnprocessableEntity,
	checkout.CodeReconciliationFailed: http.StatusUnprocessableEntity,

	// Upstream failures -> 502 Bad Gateway
	checkout.CodeOrderCreationFailed: http.StatusBadGateway,
	ErrCodeServiceUnavailable:        http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
