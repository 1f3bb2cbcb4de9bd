package storage

import (
	"context"
	"strconv"

	"github.com/gastroshop/storefront/internal/domain/checkout"
)

var _ checkout.CorrelationStore = (*CorrelationStore)(nil)

// CorrelationStore keeps the current order and payment ids under their device storage keys
type CorrelationStore struct {
	kv KeyValueStore
}

// NewCorrelationStore creates a correlation store over kv
func NewCorrelationStore(kv KeyValueStore) *CorrelationStore {
	return &CorrelationStore{kv: kv}
}

// SaveOrderID records a newly created order and blanks the payment id of the previous one
func (s *CorrelationStore) SaveOrderID(ctx context.Context, orderID int64) error {
	if err := s.kv.Set(ctx, checkout.CurrentOrderIDKey, []byte(strconv.FormatInt(orderID, 10))); err != nil {
		return err
	}
	return s.kv.Set(ctx, checkout.CurrentPaymentIDKey, []byte{})
}

// SavePaymentID records the payment opened for the current order
func (s *CorrelationStore) SavePaymentID(ctx context.Context, paymentID string) error {
	return s.kv.Set(ctx, checkout.CurrentPaymentIDKey, []byte(paymentID))
}

// Load reads the correlation record. A missing or unparsable order id reads as not found.
func (s *CorrelationStore) Load(ctx context.Context) (checkout.Correlation, bool, error) {
	raw, found, err := s.kv.Get(ctx, checkout.CurrentOrderIDKey)
	if err != nil {
		return checkout.Correlation{}, false, err
	}
	if !found {
		return checkout.Correlation{}, false, nil
	}
	orderID, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || orderID <= 0 {
		return checkout.Correlation{}, false, nil
	}

	c := checkout.Correlation{OrderID: orderID}
	paymentID, found, err := s.kv.Get(ctx, checkout.CurrentPaymentIDKey)
	if err != nil {
		return checkout.Correlation{}, false, err
	}
	if found {
		c.PaymentID = string(paymentID)
	}
	return c, true, nil
}
