package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gastroshop/storefront/internal/domain/payment"
)

var _ payment.Gateway = (*PaymentClient)(nil)

// PaymentClient drives the remote payment service
type PaymentClient struct {
	client *Client
}

// NewPaymentClient creates a payment adapter over c
func NewPaymentClient(c *Client) *PaymentClient {
	return &PaymentClient{client: c}
}

// Create opens a payment for an order
func (a *PaymentClient) Create(ctx context.Context, orderID int64) (*payment.Session, error) {
	body, err := a.client.doRequest(ctx, http.MethodPost, "/api/payments/create", createPaymentRequest{OrderID: orderID}, nil)
	if err != nil {
		return nil, err
	}

	var resp createPaymentResponse
	if err := a.client.decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentID == "" {
		return nil, fmt.Errorf("%w: missing payment_id", payment.ErrGatewayInvalidResponse)
	}

	return &payment.Session{
		PaymentID:   resp.PaymentID,
		PaymentURL:  resp.PaymentURL,
		CheckoutURL: resp.CheckoutURL,
	}, nil
}

// Status polls a payment. A 404 is reported as payment.ErrPaymentNotFound.
func (a *PaymentClient) Status(ctx context.Context, paymentID string) (*payment.Payment, error) {
	body, err := a.client.doRequest(ctx, http.MethodGet, "/api/payments/status/"+url.PathEscape(paymentID), nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, payment.ErrPaymentNotFound)
		}
		return nil, err
	}

	var resp paymentStatusResponse
	if err := a.client.decode(body, &resp); err != nil {
		return nil, err
	}

	id := resp.ID
	if id == "" {
		id = paymentID
	}
	return &payment.Payment{
		ID:     id,
		Status: payment.ParseStatus(resp.Status),
		Amount: payment.Amount{
			Value:    resp.Amount.Value,
			Currency: resp.Amount.Currency,
		},
	}, nil
}

// MockComplete settles a payment through the simulated provider
func (a *PaymentClient) MockComplete(ctx context.Context, paymentID string) (*payment.Completion, error) {
	body, err := a.client.doRequest(ctx, http.MethodPost, "/api/payments/mock/complete", mockCompleteRequest{PaymentID: paymentID}, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, payment.ErrPaymentNotFound)
		}
		return nil, err
	}

	var resp mockCompleteResponse
	if err := a.client.decode(body, &resp); err != nil {
		return nil, err
	}

	completion := &payment.Completion{PaymentID: resp.PaymentID, OrderID: resp.OrderID}
	if completion.PaymentID == "" {
		completion.PaymentID = paymentID
	}
	return completion, nil
}
