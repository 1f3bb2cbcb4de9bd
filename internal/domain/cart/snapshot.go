package cart

import "context"

// StorageKey is the device storage key holding the cart snapshot
const StorageKey = "gastroshop-cart"

// Snapshot versions
const (
	// SnapshotV1 entries carry no product ids
	SnapshotV1 = 1
	// SnapshotV2 entries may carry the product id captured at add time
	SnapshotV2 = 2
	// CurrentSnapshotVersion is written by this build
	CurrentSnapshotVersion = SnapshotV2
)

// Snapshot is the persisted form of the ledger
type Snapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// SnapshotStore persists the cart snapshot across restarts.
// LoadSnapshot returns found=false when nothing has been stored yet.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (snap Snapshot, found bool, err error)
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// repair drops entries with a non-positive quantity or empty id and merges duplicates
// by summing their quantities. The first occurrence wins for every other field.
func repair(items []LineItem) (out []LineItem, repaired bool) {
	index := make(map[string]int, len(items))
	out = make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 || it.CompositeID == "" {
			repaired = true
			continue
		}
		if pos, ok := index[it.CompositeID]; ok {
			out[pos].Quantity += it.Quantity
			if !out[pos].HasProductID() && it.HasProductID() {
				out[pos].ProductID = it.ProductID
			}
			repaired = true
			continue
		}
		index[it.CompositeID] = len(out)
		out = append(out, it)
	}
	return out, repaired
}
