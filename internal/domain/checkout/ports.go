package checkout

import (
	"context"
	"time"
)

// Correlation keys in device storage
const (
	CurrentOrderIDKey   = "current_order_id"
	CurrentPaymentIDKey = "current_payment_id"
)

// Correlation links later page loads to the checkout that created an order
type Correlation struct {
	OrderID   int64
	PaymentID string
}

// CorrelationStore persists the correlation record. Entries are overwritten by the next
// checkout and never deleted.
type CorrelationStore interface {
	SaveOrderID(ctx context.Context, orderID int64) error
	SavePaymentID(ctx context.Context, paymentID string) error
	// Load returns found=false when no order id has been stored
	Load(ctx context.Context) (c Correlation, found bool, err error)
}

// SubmissionLock is a single-writer lock shared by every coordinator using the same storage
type SubmissionLock interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SessionChecker reports whether the shopper is signed in
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) (bool, error)
}
