package cart

import (
	"github.com/gastroshop/storefront/internal/domain/cart"
)

// AddItemRequest adds a catalog product at a weight tier
type AddItemRequest struct {
	Slug string `json:"slug" binding:"required,slug"`
	// TierLabel defaults to the preselected tier when empty
	TierLabel string `json:"tier_label"`
	// Quantity defaults to 1 when omitted
	Quantity int `json:"quantity"`
}

// LineItemResponse is one cart line for display
type LineItemResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"price_cents"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Image          string `json:"image,omitempty"`
	ProductID      int64  `json:"product_id,omitempty"`
}

// CartResponse is the cart with its badge count and total
type CartResponse struct {
	Items      []LineItemResponse `json:"items"`
	Count      int                `json:"count"`
	TotalCents int64              `json:"total_cents"`
}

// ToCartResponse converts a copy of the ledger entries to a response.
// Count and total are derived from the same copy so they always agree with the items.
func ToCartResponse(items []cart.LineItem) CartResponse {
	resp := CartResponse{
		Items: make([]LineItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Count += it.Quantity
		resp.TotalCents += it.SubtotalCents()
		resp.Items = append(resp.Items, LineItemResponse{
			ID:             it.CompositeID,
			Title:          it.Title,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
			SubtotalCents:  it.SubtotalCents(),
			Image:          it.ImageRef,
			ProductID:      it.ProductID,
		})
	}
	return resp
}
