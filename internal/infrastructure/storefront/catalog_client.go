package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gastroshop/storefront/internal/domain/catalog"
)

var _ catalog.Lookup = (*CatalogClient)(nil)

// CatalogClient looks products up on the remote catalog
type CatalogClient struct {
	client *Client
}

// NewCatalogClient creates a catalog adapter over c
func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{client: c}
}

// GetBySlug fetches a product by slug. A 404 is reported as catalog.ErrProductNotFound.
func (a *CatalogClient) GetBySlug(ctx context.Context, slug string) (*catalog.CanonicalProduct, error) {
	body, err := a.client.doRequest(ctx, http.MethodGet, "/api/products/"+url.PathEscape(slug), nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("slug %q: %w", slug, catalog.ErrProductNotFound)
		}
		return nil, err
	}

	var product catalog.CanonicalProduct
	if err := a.client.decode(body, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
