package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/gastroshop/storefront/internal/application/checkout"
	"github.com/gastroshop/storefront/internal/domain/order"
)

// CheckoutHandler handles checkout API endpoints
type CheckoutHandler struct {
	BaseHandler
	orchestrator *appcheckout.Orchestrator
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(orchestrator *appcheckout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers the checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/checkout")
	g.GET("", h.Status)
	g.POST("", h.Submit)
	g.POST("/resume", h.Resume)
	g.POST("/payment/retry", h.RetryPayment)
	g.POST("/payment/refresh", h.RefreshPayment)
}

// Status returns the current checkout state
func (h *CheckoutHandler) Status(c *gin.Context) {
	h.Success(c, h.orchestrator.Snapshot())
}

// Submit places an order for the cart with the posted shipping form
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var shipping order.ShippingAddress
	if err := c.ShouldBindJSON(&shipping); err != nil {
		h.BindError(c, err)
		return
	}

	status, err := h.orchestrator.Submit(c.Request.Context(), shipping)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, status)
}

// Resume restores the checkout of the last created order
func (h *CheckoutHandler) Resume(c *gin.Context) {
	status, err := h.orchestrator.Resume(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// RetryPayment creates a new payment for the current order
func (h *CheckoutHandler) RetryPayment(c *gin.Context) {
	status, err := h.orchestrator.RetryPayment(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// RefreshPayment polls the payment status
func (h *CheckoutHandler) RefreshPayment(c *gin.Context) {
	status, err := h.orchestrator.RefreshPaymentStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}
