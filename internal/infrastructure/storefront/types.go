package storefront

import "github.com/shopspring/decimal"

type createPaymentRequest struct {
	OrderID int64 `json:"order_id"`
}

type createPaymentResponse struct {
	PaymentID   string `json:"payment_id"`
	PaymentURL  string `json:"payment_url"`
	CheckoutURL string `json:"checkout_url"`
}

type paymentStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount struct {
		Value    decimal.Decimal `json:"value"`
		Currency string          `json:"currency"`
	} `json:"amount"`
}

type mockCompleteRequest struct {
	PaymentID string `json:"payment_id"`
}

type mockCompleteResponse struct {
	Message   string `json:"message"`
	PaymentID string `json:"payment_id"`
	OrderID   int64  `json:"order_id"`
}
