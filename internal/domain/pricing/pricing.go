package pricing

import "github.com/shopspring/decimal"

// ResolveUnitPrice returns the effective unit price in cents for a base price and tier,
// rounded half up to the nearest cent.
func ResolveUnitPrice(basePriceCents int64, tier VariantTier) int64 {
	return decimal.NewFromInt(basePriceCents).
		Mul(tier.Multiplier).
		Round(0).
		IntPart()
}

// ResolveTotal returns unitPriceCents × quantity
func ResolveTotal(unitPriceCents int64, quantity int) int64 {
	return unitPriceCents * int64(quantity)
}
