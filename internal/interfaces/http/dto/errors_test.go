package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastroshop/storefront/internal/domain/cart"
	"github.com/gastroshop/storefront/internal/domain/checkout"
	"github.com/gastroshop/storefront/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{cart.ErrInvalidQuantity.Code, http.StatusBadRequest},
		{cart.ErrInvalidItem.Code, http.StatusBadRequest},
		{checkout.CodeAuthenticationRequired, http.StatusUnauthorized},
		{cart.ErrItemNotFound.Code, http.StatusNotFound},
		{checkout.CodeCheckoutInProgress, http.StatusConflict},
		{checkout.CodeReconciliationFailed, http.StatusUnprocessableEntity},
		{shared.ErrInvalidState.Code, http.StatusUnprocessableEntity},
		{cart.ErrOutOfStock.Code, http.StatusUnprocessableEntity},
		{checkout.CodeOrderCreationFailed, http.StatusBadGateway},
		{ErrCodeServiceUnavailable, http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Please check the shipping details", "req-1",
		[]ValidationDetail{{Field: "email", Message: "is required"}})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.Equal(t, "req-1", errBody["request_id"])
	assert.Len(t, errBody["details"], 1)
	assert.NotContains(t, body, "data")
}
