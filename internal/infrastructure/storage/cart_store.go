package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gastroshop/storefront/internal/domain/cart"
)

var _ cart.SnapshotStore = (*CartSnapshotStore)(nil)

// CartSnapshotStore persists the cart ledger as JSON under cart.StorageKey
type CartSnapshotStore struct {
	kv  KeyValueStore
	key string
}

// NewCartSnapshotStore creates a snapshot store over kv
func NewCartSnapshotStore(kv KeyValueStore) *CartSnapshotStore {
	return &CartSnapshotStore{kv: kv, key: cart.StorageKey}
}

// LoadSnapshot reads the stored snapshot.
// An unreadable payload is reported as found with version 0, which the ledger ignores.
func (s *CartSnapshotStore) LoadSnapshot(ctx context.Context) (cart.Snapshot, bool, error) {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return cart.Snapshot{}, false, err
	}
	if !found {
		return cart.Snapshot{}, false, nil
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cart.Snapshot{}, true, nil
	}
	return snap, true, nil
}

// SaveSnapshot overwrites the stored snapshot
func (s *CartSnapshotStore) SaveSnapshot(ctx context.Context, snap cart.Snapshot) error {
	if snap.Items == nil {
		snap.Items = []cart.LineItem{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return s.kv.Set(ctx, s.key, data)
}
