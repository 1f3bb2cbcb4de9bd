package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastroshop/storefront/internal/domain/catalog"
	"github.com/gastroshop/storefront/internal/domain/order"
	"github.com/gastroshop/storefront/internal/domain/payment"
)

func TestCatalogClient_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("should decode product", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/products/comte-24", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 42, "slug": "comte-24", "title": "Comté 24 mois",
				"price_cents": 20000, "currency": "RUB",
				"images": []string{"/img/comte.jpg"}, "in_stock": true,
			})
		}))
		defer server.Close()

		p, err := NewCatalogClient(newTestClient(t, server.URL)).GetBySlug(ctx, "comte-24")
		require.NoError(t, err)
		assert.Equal(t, int64(42), p.ID)
		assert.Equal(t, int64(20000), p.PriceCents)
		assert.Equal(t, "/img/comte.jpg", p.PrimaryImage())
		assert.True(t, p.InStock)
	})

	t.Run("should map 404 to product not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		}))
		defer server.Close()

		_, err := NewCatalogClient(newTestClient(t, server.URL)).GetBySlug(ctx, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})

	t.Run("should escape slug", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/comte-200г", r.URL.Path)
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		}))
		defer server.Close()

		_, err := NewCatalogClient(newTestClient(t, server.URL)).GetBySlug(ctx, "comte-200г")
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestOrderClient(t *testing.T) {
	ctx := context.Background()

	t.Run("should create order with idempotency key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/orders", r.URL.Path)
			assert.Equal(t, "key-1", r.Header.Get(IdempotencyKeyHeader))

			var req order.CreateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Items, 1)
			assert.Equal(t, int64(42), req.Items[0].ProductID)
			assert.Equal(t, "Ivan", req.ShippingAddress.FirstName)

			writeJSON(w, http.StatusCreated, map[string]any{
				"id": 7, "items": req.Items, "amount_cents": req.AmountCents(),
				"currency": "RUB", "status": "pending",
			})
		}))
		defer server.Close()

		req := order.CreateRequest{
			Items:           []order.Item{{ProductID: 42, Quantity: 2, PriceCents: 20000}},
			ShippingAddress: order.ShippingAddress{FirstName: "Ivan"},
		}
		o, err := NewOrderClient(newTestClient(t, server.URL)).Create(ctx, req, "key-1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), o.ID)
		assert.Equal(t, int64(40000), o.AmountCents)
	})

	t.Run("should generate key when missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := uuid.Parse(r.Header.Get(IdempotencyKeyHeader))
			assert.NoError(t, err)
			writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
		}))
		defer server.Close()

		_, err := NewOrderClient(newTestClient(t, server.URL)).Create(ctx, order.CreateRequest{}, "")
		require.NoError(t, err)
	})

	t.Run("should reject response without id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"status": "pending"})
		}))
		defer server.Close()

		_, err := NewOrderClient(newTestClient(t, server.URL)).Create(ctx, order.CreateRequest{}, "k")
		assert.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("should get order and map 404", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/orders/7" {
				writeJSON(w, http.StatusOK, map[string]any{"id": 7, "payment_id": "pay-1", "amount_cents": 100})
				return
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		}))
		defer server.Close()

		c := NewOrderClient(newTestClient(t, server.URL))
		o, err := c.Get(ctx, 7)
		require.NoError(t, err)
		assert.True(t, o.HasPayment())

		_, err = c.Get(ctx, 8)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestPaymentClient(t *testing.T) {
	ctx := context.Background()

	t.Run("should create payment session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/payments/create", r.URL.Path)
			var body map[string]int64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(7), body["order_id"])
			writeJSON(w, http.StatusOK, map[string]string{"payment_id": "pay-1", "checkout_url": "https://pay.example/c"})
		}))
		defer server.Close()

		s, err := NewPaymentClient(newTestClient(t, server.URL)).Create(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "pay-1", s.PaymentID)
		assert.Equal(t, "https://pay.example/c", s.RedirectURL())
	})

	t.Run("should reject session without payment id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"payment_url": "https://pay.example"})
		}))
		defer server.Close()

		_, err := NewPaymentClient(newTestClient(t, server.URL)).Create(ctx, 7)
		assert.ErrorIs(t, err, payment.ErrGatewayInvalidResponse)
	})

	t.Run("should normalize status and parse string amount", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/payments/status/pay-1", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "pay-1", "status": "paid",
				"amount": map[string]string{"value": "100.00", "currency": "RUB"},
			})
		}))
		defer server.Close()

		p, err := NewPaymentClient(newTestClient(t, server.URL)).Status(ctx, "pay-1")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusSucceeded, p.Status)
		assert.True(t, decimal.RequireFromString("100").Equal(p.Amount.Value))
		assert.Equal(t, "RUB", p.Amount.Currency)
	})

	t.Run("should mock complete payment", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/payments/mock/complete", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pay-1", body["payment_id"])
			writeJSON(w, http.StatusOK, map[string]any{"message": "Payment completed", "payment_id": "pay-1", "order_id": 7})
		}))
		defer server.Close()

		c, err := NewPaymentClient(newTestClient(t, server.URL)).MockComplete(ctx, "pay-1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), c.OrderID)
		assert.Equal(t, "pay-1", c.PaymentID)
	})

	t.Run("should map unknown payment to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
		}))
		defer server.Close()

		_, err := NewPaymentClient(newTestClient(t, server.URL)).Status(ctx, "nope")
		assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	})
}
