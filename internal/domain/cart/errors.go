package cart

import "github.com/gastroshop/storefront/internal/domain/shared"

// Cart errors
var (
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	ErrItemNotFound    = shared.NewDomainError("NOT_FOUND", "Cart item not found")
	ErrInvalidItem     = shared.NewDomainError("INVALID_INPUT", "Cart item must have an id and a non-negative price")
	ErrOutOfStock      = shared.NewDomainError("OUT_OF_STOCK", "Product is out of stock")
)
