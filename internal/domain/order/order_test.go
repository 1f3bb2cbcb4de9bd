package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateRequest_AmountCents(t *testing.T) {
	req := CreateRequest{Items: []Item{
		{ProductID: 1, Quantity: 2, PriceCents: 30000},
		{ProductID: 2, Quantity: 3, PriceCents: 50000},
	}}
	assert.Equal(t, int64(210000), req.AmountCents())
	assert.Equal(t, int64(0), CreateRequest{}.AmountCents())
}

func TestOrder_HasPayment(t *testing.T) {
	assert.False(t, (&Order{ID: 1}).HasPayment())
	assert.True(t, (&Order{ID: 1, PaymentID: "pay_1"}).HasPayment())
}
