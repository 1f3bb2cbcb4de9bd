package order

import "github.com/gastroshop/storefront/internal/domain/shared"

// ErrOrderNotFound is returned when the order service has no order with the id
var ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")
