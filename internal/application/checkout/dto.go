package checkout

import (
	"time"

	domain "github.com/gastroshop/storefront/internal/domain/checkout"
)

// ErrorView is the last failure shown with the checkout status
type ErrorView struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// CheckoutStatus is the display view of the checkout
type CheckoutStatus struct {
	State           domain.State `json:"state"`
	OrderID         int64        `json:"order_id,omitempty"`
	AmountCents     int64        `json:"amount_cents,omitempty"`
	Currency        string       `json:"currency,omitempty"`
	PaymentID       string       `json:"payment_id,omitempty"`
	PaymentStatus   string       `json:"payment_status,omitempty"`
	RedirectURL     string       `json:"redirect_url,omitempty"`
	RedirectAfterMs int64        `json:"redirect_after_ms,omitempty"`
	Notice          string       `json:"notice,omitempty"`
	Error           *ErrorView   `json:"error,omitempty"`
}

// RedirectAfter returns the navigation delay as a duration
func (s CheckoutStatus) RedirectAfter() time.Duration {
	return time.Duration(s.RedirectAfterMs) * time.Millisecond
}

// PaymentView backs the simulated gateway page
type PaymentView struct {
	PaymentID string `json:"payment_id"`
	OrderID   int64  `json:"order_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency,omitempty"`
	Status    string `json:"status"`
}
