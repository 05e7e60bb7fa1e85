package dummygw

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/revelohq/revelo/core/payment"
)

// Gateway fakes the payment provider. A signature equal to
// ValidSignature verifies; everything else fails.
type Gateway struct {
	ValidSignature string

	mu     sync.Mutex
	Orders []payment.Order
}

var _ payment.Gateway = (*Gateway)(nil)

func NewGateway() *Gateway {
	return &Gateway{ValidSignature: "valid-signature"}
}

func (gw *Gateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string) (payment.Order, error) {
	order := payment.Order{
		ID:       "order_" + uuid.NewString(),
		Amount:   amount,
		Currency: "INR",
		Receipt:  receipt,
	}
	gw.mu.Lock()
	gw.Orders = append(gw.Orders, order)
	gw.mu.Unlock()
	return order, nil
}

func (gw *Gateway) VerifySignature(_, _, signature string) bool {
	return signature == gw.ValidSignature
}
