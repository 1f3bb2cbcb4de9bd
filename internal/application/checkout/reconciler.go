// Package checkout coordinates reconciliation, order submission and payment for a cart.
package checkout

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gastroshop/storefront/internal/domain/cart"
	"github.com/gastroshop/storefront/internal/domain/catalog"
	domain "github.com/gastroshop/storefront/internal/domain/checkout"
	"github.com/gastroshop/storefront/internal/domain/pricing"
)

// DefaultReconcileConcurrency bounds concurrent catalog lookups when none is configured
const DefaultReconcileConcurrency = 4

// ResolvedLine is a cart line matched to its catalog product
type ResolvedLine struct {
	Item      cart.LineItem
	ProductID int64
}

// Reconciler maps cart lines to catalog product ids
type Reconciler struct {
	catalog     catalog.Lookup
	concurrency int
	logger      *zap.Logger
}

// NewReconciler creates a reconciler that runs at most concurrency lookups at once
func NewReconciler(lookup catalog.Lookup, concurrency int, logger *zap.Logger) *Reconciler {
	if concurrency <= 0 {
		concurrency = DefaultReconcileConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		catalog:     lookup,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Reconcile resolves every line. It succeeds only when all lines resolve; otherwise the
// returned ReconciliationError names every unresolved composite id in cart order.
// Lines that captured a product id when added are not looked up again.
func (r *Reconciler) Reconcile(ctx context.Context, items []cart.LineItem) ([]ResolvedLine, error) {
	resolved := make([]ResolvedLine, len(items))
	found := make([]bool, len(items))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, item := range items {
		g.Go(func() error {
			id, ok := r.resolve(ctx, item)
			resolved[i] = ResolvedLine{Item: item, ProductID: id}
			found[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var unresolved []string
	for i, ok := range found {
		if !ok {
			unresolved = append(unresolved, items[i].CompositeID)
		}
	}
	if len(unresolved) > 0 {
		return nil, domain.NewReconciliationError(unresolved)
	}
	return resolved, nil
}

func (r *Reconciler) resolve(ctx context.Context, item cart.LineItem) (int64, bool) {
	if item.HasProductID() {
		return item.ProductID, true
	}

	for _, slug := range candidateSlugs(item.CompositeID) {
		product, err := r.catalog.GetBySlug(ctx, slug)
		if err == nil && product != nil && product.ID > 0 {
			return product.ID, true
		}
		if err != nil && !errors.Is(err, catalog.ErrProductNotFound) {
			// transport failures count as a miss for this candidate
			r.logger.Warn("Catalog lookup failed during reconciliation",
				zap.String("id", item.CompositeID),
				zap.String("candidate", slug),
				zap.Error(err))
		}
		if ctx.Err() != nil {
			return 0, false
		}
	}
	return 0, false
}

// candidateSlugs returns the full id followed by every strictly shorter separator-joined
// prefix, longest first: "a-b-c" yields "a-b-c", "a-b", "a".
func candidateSlugs(compositeID string) []string {
	parts := strings.Split(compositeID, pricing.CompositeSeparator)
	out := make([]string, 0, len(parts))
	out = append(out, compositeID)
	for n := len(parts) - 1; n >= 1; n-- {
		prefix := strings.Join(parts[:n], pricing.CompositeSeparator)
		if prefix == "" || strings.HasSuffix(prefix, pricing.CompositeSeparator) {
			continue
		}
		out = append(out, prefix)
	}
	return out
}
