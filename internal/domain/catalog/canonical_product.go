package catalog

import (
	"context"

	"github.com/gastroshop/storefront/internal/domain/shared"
)

// CanonicalProduct is the catalog's authoritative product record as seen by the storefront.
// PriceCents is the base price of the default variant.
type CanonicalProduct struct {
	ID         int64    `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	PriceCents int64    `json:"price_cents"`
	Currency   string   `json:"currency"`
	Images     []string `json:"images"`
	InStock    bool     `json:"in_stock"`
}

// PrimaryImage returns the first image reference, or an empty string
func (p *CanonicalProduct) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ErrProductNotFound is returned by a Lookup when no product has the slug
var ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")

// Lookup resolves products by slug against the remote catalog
type Lookup interface {
	GetBySlug(ctx context.Context, slug string) (*CanonicalProduct, error)
}
