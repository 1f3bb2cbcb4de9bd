package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/gastroshop/storefront/internal/domain/order"
)

var _ order.Service = (*OrderClient)(nil)

// IdempotencyKeyHeader carries the client-generated key on order submissions
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderClient creates and reads orders on the remote order service
type OrderClient struct {
	client *Client
}

// NewOrderClient creates an order adapter over c
func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{client: c}
}

// Create submits an order. It is sent exactly once; a fresh key is generated when none is given.
func (a *OrderClient) Create(ctx context.Context, req order.CreateRequest, idempotencyKey string) (*order.Order, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	headers := map[string]string{IdempotencyKeyHeader: idempotencyKey}

	body, err := a.client.doRequest(ctx, http.MethodPost, "/api/orders", req, headers)
	if err != nil {
		return nil, err
	}

	var created order.Order
	if err := a.client.decode(body, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, fmt.Errorf("%w: order response has no id", ErrRequestFailed)
	}
	return &created, nil
}

// Get fetches an order by id. A 404 is reported as order.ErrOrderNotFound.
func (a *OrderClient) Get(ctx context.Context, id int64) (*order.Order, error) {
	body, err := a.client.doRequest(ctx, http.MethodGet, "/api/orders/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("order %d: %w", id, order.ErrOrderNotFound)
		}
		return nil, err
	}

	var o order.Order
	if err := a.client.decode(body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
