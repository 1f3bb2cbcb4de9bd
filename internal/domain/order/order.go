// Package order describes orders as created on the remote order service.
package order

import (
	"context"
	"time"
)

// Item is one order line as sent to the order service.
// PriceCents is the unit price captured in the cart at submission time.
type Item struct {
	ProductID  int64 `json:"product_id"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"price_cents"`
}

// ShippingAddress is the delivery destination attached to an order
type ShippingAddress struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`
}

// CreateRequest is the body of an order submission
type CreateRequest struct {
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

// AmountCents returns the sum of price × quantity over all items
func (r CreateRequest) AmountCents() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.PriceCents * int64(it.Quantity)
	}
	return total
}

// Order is the order service's record
type Order struct {
	ID              int64           `json:"id"`
	Items           []Item          `json:"items"`
	AmountCents     int64           `json:"amount_cents"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	PaymentID       string          `json:"payment_id"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// HasPayment reports whether the order service has linked a payment to the order
func (o *Order) HasPayment() bool {
	return o.PaymentID != ""
}

// Service is the remote order service.
// Create is not idempotent unless the server honors the idempotency key.
type Service interface {
	Create(ctx context.Context, req CreateRequest, idempotencyKey string) (*Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
}
