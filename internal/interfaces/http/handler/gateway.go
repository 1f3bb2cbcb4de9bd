package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/gastroshop/storefront/internal/application/checkout"
)

// MockGatewayHandler serves the simulated payment page used outside production
type MockGatewayHandler struct {
	BaseHandler
	orchestrator *appcheckout.Orchestrator
}

// NewMockGatewayHandler creates a new MockGatewayHandler
func NewMockGatewayHandler(orchestrator *appcheckout.Orchestrator) *MockGatewayHandler {
	return &MockGatewayHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers the simulated gateway routes. They live outside the
// versioned API so redirect targets resolve as page paths.
func (h *MockGatewayHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/mock-checkout/:paymentId")
	g.GET("", h.Show)
	g.POST("/pay", h.Pay)
	g.POST("/cancel", h.Cancel)
}

// Show returns the payment id, order id and amount for the payment page
func (h *MockGatewayHandler) Show(c *gin.Context) {
	view, err := h.orchestrator.DescribePayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Pay completes the payment
func (h *MockGatewayHandler) Pay(c *gin.Context) {
	status, err := h.orchestrator.CompletePayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Cancel abandons the payment
func (h *MockGatewayHandler) Cancel(c *gin.Context) {
	status, err := h.orchestrator.CancelPayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}
