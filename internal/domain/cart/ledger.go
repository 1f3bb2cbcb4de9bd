package cart

import (
	"context"
	"fmt"
	"sync"
)

// Ledger is the shopper's cart. It is safe for concurrent use.
// Every mutation is computed on a copy, persisted through the SnapshotStore and only then
// made visible, so a failed write leaves the ledger as it was.
type Ledger struct {
	mu    sync.RWMutex
	items []LineItem
	store SnapshotStore
}

// LoadReport describes what Load found in storage
type LoadReport struct {
	Found    bool
	Version  int
	Repaired bool
	// Ignored is set when the snapshot had a version this build cannot read
	Ignored bool
}

// NewLedger creates an empty ledger backed by store
func NewLedger(store SnapshotStore) *Ledger {
	return &Ledger{store: store}
}

// Load replaces the in-memory ledger with the stored snapshot.
// Corrupt entries are repaired; an unreadable version leaves the ledger empty.
func (l *Ledger) Load(ctx context.Context) (LoadReport, error) {
	snap, found, err := l.store.LoadSnapshot(ctx)
	if err != nil {
		return LoadReport{}, fmt.Errorf("load cart snapshot: %w", err)
	}

	report := LoadReport{Found: found, Version: snap.Version}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !found {
		l.items = nil
		return report, nil
	}
	if snap.Version < SnapshotV1 || snap.Version > CurrentSnapshotVersion {
		l.items = nil
		report.Ignored = true
		return report, nil
	}

	items := snap.Items
	if snap.Version == SnapshotV1 {
		items = make([]LineItem, len(snap.Items))
		copy(items, snap.Items)
		for i := range items {
			items[i].ProductID = 0
		}
	}
	l.items, report.Repaired = repair(items)
	return report, nil
}

// Add inserts item with quantity, or increases the quantity of the existing entry
// with the same composite id. The stored title, price and image are kept on merge.
func (l *Ledger) Add(ctx context.Context, item LineItem, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.CompositeID == "" || item.UnitPriceCents < 0 {
		return ErrInvalidItem
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.clone()
	if pos := indexOf(next, item.CompositeID); pos >= 0 {
		next[pos].Quantity += quantity
		if !next[pos].HasProductID() && item.HasProductID() {
			next[pos].ProductID = item.ProductID
		}
	} else {
		item.Quantity = quantity
		next = append(next, item)
	}
	return l.commit(ctx, next)
}

// Remove deletes the entry with id. Removing an absent id is a no-op.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := indexOf(l.items, id)
	if pos < 0 {
		return nil
	}
	next := l.clone()
	next = append(next[:pos], next[pos+1:]...)
	return l.commit(ctx, next)
}

// Increment adds one to the quantity of the entry with id
func (l *Ledger) Increment(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := indexOf(l.items, id)
	if pos < 0 {
		return nil
	}
	next := l.clone()
	next[pos].Quantity++
	return l.commit(ctx, next)
}

// Decrement subtracts one from the quantity of the entry with id.
// An entry at quantity 1 is removed instead of being left at zero.
func (l *Ledger) Decrement(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := indexOf(l.items, id)
	if pos < 0 {
		return nil
	}
	next := l.clone()
	if next[pos].Quantity <= 1 {
		next = append(next[:pos], next[pos+1:]...)
	} else {
		next[pos].Quantity--
	}
	return l.commit(ctx, next)
}

// Clear empties the ledger
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(ctx, []LineItem{})
}

// Count returns the sum of all quantities
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

// TotalCents returns the sum of unit price × quantity over all entries
func (l *Ledger) TotalCents() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, it := range l.items {
		total += it.SubtotalCents()
	}
	return total
}

// Items returns a copy of the entries in insertion order
func (l *Ledger) Items() []LineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clone()
}

// Get returns the entry with id
func (l *Ledger) Get(id string) (LineItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if pos := indexOf(l.items, id); pos >= 0 {
		return l.items[pos], true
	}
	return LineItem{}, false
}

// IsEmpty reports whether the ledger has no entries
func (l *Ledger) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items) == 0
}

// commit persists next and swaps it in. Caller holds the write lock.
func (l *Ledger) commit(ctx context.Context, next []LineItem) error {
	snap := Snapshot{Version: CurrentSnapshotVersion, Items: next}
	if err := l.store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	l.items = next
	return nil
}

func (l *Ledger) clone() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func indexOf(items []LineItem, id string) int {
	for i, it := range items {
		if it.CompositeID == id {
			return i
		}
	}
	return -1
}
