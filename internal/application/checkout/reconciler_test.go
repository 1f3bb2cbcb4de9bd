package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gastroshop/storefront/internal/domain/cart"
	"github.com/gastroshop/storefront/internal/domain/catalog"
	domain "github.com/gastroshop/storefront/internal/domain/checkout"
)

func notFound(slug string) error {
	return fmt.Errorf("slug %q: %w", slug, catalog.ErrProductNotFound)
}

func TestCandidateSlugs(t *testing.T) {
	tests := []struct {
		id   string
		want []string
	}{
		{"a-b-c", []string{"a-b-c", "a-b", "a"}},
		{"brie", []string{"brie"}},
		{"comte-24-200г", []string{"comte-24-200г", "comte-24", "comte"}},
		{"-x", []string{"-x"}},
		{"a--b", []string{"a--b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, candidateSlugs(tt.id))
		})
	}
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("should resolve a full id without trying prefixes", func(t *testing.T) {
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, "brie").Return(&catalog.CanonicalProduct{ID: 7}, nil).Once()

		r := NewReconciler(lookup, 2, nil)
		lines, err := r.Reconcile(ctx, []cart.LineItem{{CompositeID: "brie", Quantity: 1}})

		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, int64(7), lines[0].ProductID)
		lookup.AssertExpectations(t)
	})

	t.Run("should stop at the longest matching prefix", func(t *testing.T) {
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, "a-b-c").Return(nil, notFound("a-b-c")).Once()
		lookup.On("GetBySlug", mock.Anything, "a-b").Return(&catalog.CanonicalProduct{ID: 5}, nil).Once()

		r := NewReconciler(lookup, 1, nil)
		lines, err := r.Reconcile(ctx, []cart.LineItem{{CompositeID: "a-b-c", Quantity: 1}})

		require.NoError(t, err)
		assert.Equal(t, int64(5), lines[0].ProductID)
		lookup.AssertNotCalled(t, "GetBySlug", mock.Anything, "a")
	})

	t.Run("should resolve a variant id through its slug prefix", func(t *testing.T) {
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, "comte-200g").Return(nil, notFound("comte-200g")).Once()
		lookup.On("GetBySlug", mock.Anything, "comte").Return(&catalog.CanonicalProduct{ID: 11, Slug: "comte"}, nil).Once()

		r := NewReconciler(lookup, 1, nil)
		lines, err := r.Reconcile(ctx, []cart.LineItem{{CompositeID: "comte-200g", Quantity: 1}})

		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, int64(11), lines[0].ProductID)
		lookup.AssertExpectations(t)
	})

	t.Run("should try every prefix before giving up", func(t *testing.T) {
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, "unknown-slug-200g").Return(nil, notFound("unknown-slug-200g")).Once()
		lookup.On("GetBySlug", mock.Anything, "unknown-slug").Return(nil, notFound("unknown-slug")).Once()
		lookup.On("GetBySlug", mock.Anything, "unknown").Return(nil, notFound("unknown")).Once()

		r := NewReconciler(lookup, 1, nil)
		_, err := r.Reconcile(ctx, []cart.LineItem{{CompositeID: "unknown-slug-200g", Quantity: 1}})

		var recErr *domain.ReconciliationError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, []string{"unknown-slug-200g"}, recErr.Unresolved)
		lookup.AssertExpectations(t)
		lookup.AssertNumberOfCalls(t, "GetBySlug", 3)

		var order []string
		for _, call := range lookup.Calls {
			order = append(order, call.Arguments.String(1))
		}
		assert.Equal(t, []string{"unknown-slug-200g", "unknown-slug", "unknown"}, order)
	})

	t.Run("should use a captured product id without lookup", func(t *testing.T) {
		lookup := new(MockCatalog)

		r := NewReconciler(lookup, 0, nil)
		lines, err := r.Reconcile(ctx, []cart.LineItem{{CompositeID: "comte-200г", Quantity: 2, ProductID: 42}})

		require.NoError(t, err)
		assert.Equal(t, int64(42), lines[0].ProductID)
		assert.Equal(t, 2, lines[0].Item.Quantity)
		lookup.AssertNotCalled(t, "GetBySlug", mock.Anything, mock.Anything)
	})

	t.Run("should name every unresolved line in cart order", func(t *testing.T) {
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, "ok-200г").Return(&catalog.CanonicalProduct{ID: 1}, nil)
		lookup.On("GetBySlug", mock.Anything, mock.Anything).Return(nil, catalog.ErrProductNotFound)

		r := NewReconciler(lookup, 4, nil)
		_, err := r.Reconcile(ctx, []cart.LineItem{
			{CompositeID: "gone-1-200г", Quantity: 1},
			{CompositeID: "ok-200г", Quantity: 1},
			{CompositeID: "gone-2-500г", Quantity: 1},
		})

		var recErr *domain.ReconciliationError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, []string{"gone-1-200г", "gone-2-500г"}, recErr.Unresolved)
		assert.Equal(t, domain.CodeReconciliationFailed, recErr.Code)
	})

	t.Run("should count transport errors as a miss", func(t *testing.T) {
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, "x-1").Return(nil, errors.New("connection refused"))
		lookup.On("GetBySlug", mock.Anything, "x").Return(&catalog.CanonicalProduct{ID: 3}, nil)

		r := NewReconciler(lookup, 1, nil)
		lines, err := r.Reconcile(ctx, []cart.LineItem{{CompositeID: "x-1", Quantity: 1}})

		require.NoError(t, err)
		assert.Equal(t, int64(3), lines[0].ProductID)
	})

	t.Run("should return the context error when canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		lookup := new(MockCatalog)
		lookup.On("GetBySlug", mock.Anything, mock.Anything).Return(nil, context.Canceled)

		r := NewReconciler(lookup, 1, nil)
		_, err := r.Reconcile(canceled, []cart.LineItem{{CompositeID: "a-b", Quantity: 1}})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
