package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appcart "github.com/gastroshop/storefront/internal/application/cart"
)

// CartHandler handles cart API endpoints
type CartHandler struct {
	BaseHandler
	service *appcart.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(service *appcart.Service) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/cart")
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.POST("/items", h.AddItem)
	g.POST("/items/:id/increment", h.Increment)
	g.POST("/items/:id/decrement", h.Decrement)
	g.DELETE("/items/:id", h.Remove)
}

// Get returns the cart with its count and total
func (h *CartHandler) Get(c *gin.Context) {
	h.Success(c, h.service.Get(c.Request.Context()))
}

// AddItem adds a catalog product to the cart at the requested tier
func (h *CartHandler) AddItem(c *gin.Context) {
	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.AddFromCatalog(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Increment raises a line's quantity by one
func (h *CartHandler) Increment(c *gin.Context) {
	h.respond(c, h.service.Increment)
}

// Decrement lowers a line's quantity by one, removing the line at zero
func (h *CartHandler) Decrement(c *gin.Context) {
	h.respond(c, h.service.Decrement)
}

// Remove deletes a line
func (h *CartHandler) Remove(c *gin.Context) {
	h.respond(c, h.service.Remove)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	resp, err := h.service.Clear(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *CartHandler) respond(c *gin.Context, op func(ctx context.Context, id string) (*appcart.CartResponse, error)) {
	resp, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
