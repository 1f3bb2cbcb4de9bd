// Package pricing resolves effective unit prices for the purchasable variants of a product.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CompositeSeparator joins a catalog slug and a variant label into a cart line id
const CompositeSeparator = "-"

// VariantTier is one purchasable unit of a product with its price multiplier
type VariantTier struct {
	Label      string
	Multiplier decimal.Decimal
}

// String returns the tier label
func (t VariantTier) String() string {
	return t.Label
}

// standardTiers is the closed set of weight tiers offered on every product page.
// The multiplier applies to the catalog base price, which is quoted per 200g.
var standardTiers = []VariantTier{
	{Label: "100г", Multiplier: decimal.RequireFromString("0.5")},
	{Label: "200г", Multiplier: decimal.NewFromInt(1)},
	{Label: "500г", Multiplier: decimal.RequireFromString("2.5")},
	{Label: "1кг", Multiplier: decimal.NewFromInt(5)},
}

// DefaultTierIndex is the tier preselected on a product page
const DefaultTierIndex = 1

// Tiers returns a copy of the standard tier table in display order
func Tiers() []VariantTier {
	out := make([]VariantTier, len(standardTiers))
	copy(out, standardTiers)
	return out
}

// TierAt returns the tier at index. An out-of-range index is a programming error.
func TierAt(index int) VariantTier {
	if index < 0 || index >= len(standardTiers) {
		panic(fmt.Sprintf("pricing: tier index %d out of range [0,%d)", index, len(standardTiers)))
	}
	return standardTiers[index]
}

// DefaultTier returns the preselected tier
func DefaultTier() VariantTier {
	return TierAt(DefaultTierIndex)
}

// TierByLabel looks a tier up by its label
func TierByLabel(label string) (VariantTier, bool) {
	for _, t := range standardTiers {
		if t.Label == label {
			return t, true
		}
	}
	return VariantTier{}, false
}

// CompositeID builds the cart line id for a product slug and tier
func CompositeID(slug string, tier VariantTier) string {
	return slug + CompositeSeparator + tier.Label
}
