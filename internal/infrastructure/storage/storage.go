// Package storage provides the key-value device storage behind the cart snapshot
// and the checkout correlation record.
package storage

import (
	"context"
	"errors"
)

// ErrKeyRequired is returned when an operation is given an empty key
var ErrKeyRequired = errors.New("storage key is required")

// KeyValueStore is a small durable key-value store.
// Get returns found=false for a key that was never written or has been deleted.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
