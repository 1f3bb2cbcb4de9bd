// Package cart holds the shopper's cart ledger: line items keyed by composite id,
// persisted as a snapshot after every mutation.
package cart

// LineItem is one cart entry. CompositeID is the catalog slug joined with the variant
// label; it is the ledger key and is never reused for a second entry.
type LineItem struct {
	CompositeID    string `json:"id"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"price_cents"`
	ImageRef       string `json:"image,omitempty"`
	Quantity       int    `json:"quantity"`
	// ProductID is the catalog id captured when the item was added. Zero for entries
	// restored from snapshots written before ids were captured.
	ProductID int64 `json:"product_id,omitempty"`
}

// SubtotalCents returns unit price × quantity
func (i LineItem) SubtotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// HasProductID reports whether the catalog id was captured at add time
func (i LineItem) HasProductID() bool {
	return i.ProductID > 0
}
