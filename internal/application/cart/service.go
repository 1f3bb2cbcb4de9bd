// Package cart implements the cart use cases behind the local API.
package cart

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gastroshop/storefront/internal/domain/cart"
	"github.com/gastroshop/storefront/internal/domain/catalog"
	"github.com/gastroshop/storefront/internal/domain/pricing"
	"github.com/gastroshop/storefront/internal/domain/shared"
)

// Metrics receives the cart size after every change
type Metrics interface {
	RecordCartItems(ctx context.Context, count int)
}

// Service handles cart operations over the shared ledger
type Service struct {
	ledger  *cart.Ledger
	catalog catalog.Lookup
	metrics Metrics
	logger  *zap.Logger
}

// NewService creates a new cart service
func NewService(ledger *cart.Ledger, lookup catalog.Lookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledger,
		catalog: lookup,
		logger:  logger,
	}
}

// SetMetrics sets the optional metrics sink
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// Restore rehydrates the ledger from device storage
func (s *Service) Restore(ctx context.Context) error {
	report, err := s.ledger.Load(ctx)
	if err != nil {
		return err
	}

	switch {
	case report.Ignored:
		s.logger.Warn("Ignoring cart snapshot with unsupported version",
			zap.Int("version", report.Version))
	case report.Repaired:
		s.logger.Warn("Repaired corrupt cart snapshot",
			zap.Int("version", report.Version),
			zap.Int("items", s.ledger.Count()))
	case report.Found:
		s.logger.Info("Cart restored", zap.Int("items", s.ledger.Count()))
	}
	s.recordSize(ctx)
	return nil
}

// Get returns the current cart
func (s *Service) Get(_ context.Context) CartResponse {
	return s.snapshot()
}

// AddFromCatalog adds a product page selection: the product is looked up by slug,
// priced at the chosen tier and stored with its catalog id.
func (s *Service) AddFromCatalog(ctx context.Context, req AddItemRequest) (*CartResponse, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, shared.NewValidationError("Product is required",
			shared.FieldError{Field: "slug", Message: "is required"})
	}

	tier := pricing.DefaultTier()
	if req.TierLabel != "" {
		t, ok := pricing.TierByLabel(req.TierLabel)
		if !ok {
			return nil, shared.NewValidationError("Unknown weight option",
				shared.FieldError{Field: "tier_label", Message: "must be one of the offered weights"})
		}
		tier = t
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}

	product, err := s.catalog.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, cart.ErrOutOfStock
	}

	item := cart.LineItem{
		CompositeID:    pricing.CompositeID(product.Slug, tier),
		Title:          product.Title,
		UnitPriceCents: pricing.ResolveUnitPrice(product.PriceCents, tier),
		ImageRef:       product.PrimaryImage(),
		ProductID:      product.ID,
	}
	if err := s.ledger.Add(ctx, item, quantity); err != nil {
		return nil, err
	}

	s.logger.Debug("Cart item added",
		zap.String("id", item.CompositeID),
		zap.Int("quantity", quantity))
	return s.changed(ctx), nil
}

// Increment adds one unit of a line
func (s *Service) Increment(ctx context.Context, id string) (*CartResponse, error) {
	if err := s.ledger.Increment(ctx, id); err != nil {
		return nil, err
	}
	return s.changed(ctx), nil
}

// Decrement removes one unit of a line; the last unit removes the line
func (s *Service) Decrement(ctx context.Context, id string) (*CartResponse, error) {
	if err := s.ledger.Decrement(ctx, id); err != nil {
		return nil, err
	}
	return s.changed(ctx), nil
}

// Remove deletes a line
func (s *Service) Remove(ctx context.Context, id string) (*CartResponse, error) {
	if err := s.ledger.Remove(ctx, id); err != nil {
		return nil, err
	}
	return s.changed(ctx), nil
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context) (*CartResponse, error) {
	if err := s.ledger.Clear(ctx); err != nil {
		return nil, err
	}
	return s.changed(ctx), nil
}

func (s *Service) changed(ctx context.Context) *CartResponse {
	resp := s.snapshot()
	if s.metrics != nil {
		s.metrics.RecordCartItems(ctx, resp.Count)
	}
	return &resp
}

func (s *Service) snapshot() CartResponse {
	return ToCartResponse(s.ledger.Items())
}

func (s *Service) recordSize(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordCartItems(ctx, s.ledger.Count())
	}
}
