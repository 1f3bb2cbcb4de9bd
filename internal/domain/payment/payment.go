// Package payment describes payments as reported by the remote payment service.
package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	ErrPaymentNotFound        = errors.New("payment: payment not found")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
)

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status is the normalized payment status
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
	// StatusUnknown marks a status that could not be determined, including poll errors
	StatusUnknown Status = "unknown"
)

// ParseStatus normalizes a provider status. "paid" is reported as succeeded and
// anything unrecognized as unknown.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "waiting_for_capture":
		return StatusPending
	case "succeeded", "paid":
		return StatusSucceeded
	case "canceled", "cancelled":
		return StatusCanceled
	case "failed":
		return StatusFailed
	}
	return StatusUnknown
}

// IsValid checks if the status is one of the known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSucceeded, StatusCanceled, StatusFailed, StatusUnknown:
		return true
	}
	return false
}

// IsTerminal reports whether the payment can no longer change on its own
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusCanceled || s == StatusFailed
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Payment
// ---------------------------------------------------------------------------

// Amount is the payment amount as quoted by the provider
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Payment is the status view of a payment
type Payment struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Amount Amount `json:"amount"`
}

// Session is the result of creating a payment for an order
type Session struct {
	PaymentID   string
	PaymentURL  string
	CheckoutURL string
}

// RedirectURL returns the hosted payment page, preferring the payment URL
func (s Session) RedirectURL() string {
	if s.PaymentURL != "" {
		return s.PaymentURL
	}
	return s.CheckoutURL
}

// Completion is the simulated gateway's answer to a completed payment
type Completion struct {
	PaymentID string
	OrderID   int64
}

// Gateway is the remote payment service
type Gateway interface {
	Create(ctx context.Context, orderID int64) (*Session, error)
	Status(ctx context.Context, paymentID string) (*Payment, error)
	// MockComplete settles a payment through the simulated provider
	MockComplete(ctx context.Context, paymentID string) (*Completion, error)
}
