package razorpaygw

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/shopspring/decimal"

	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/payment"
)

const currency = "INR"

type gateway struct {
	client    *razorpay.Client
	keySecret string
}

var _ payment.Gateway = (*gateway)(nil)

func NewGateway(conf *core.Config) *gateway {
	return &gateway{
		client:    razorpay.NewClient(conf.Razorpay.KeyID, conf.Razorpay.KeySecret),
		keySecret: conf.Razorpay.KeySecret,
	}
}

// CreateOrder opens an order for amount (rupees); the razorpay API
// wants the smallest currency unit.
func (gw *gateway) CreateOrder(_ context.Context, amount decimal.Decimal, receipt string) (payment.Order, error) {
	paise := amount.Mul(decimal.NewFromInt(100)).IntPart()

	data := map[string]interface{}{
		"amount":   paise,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := gw.client.Order.Create(data, nil)
	if err != nil {
		return payment.Order{}, pkgerrors.Wrap(err, "creating razorpay order")
	}

	id, ok := body["id"].(string)
	if !ok {
		return payment.Order{}, fmt.Errorf("unexpected razorpay order response: %v", body)
	}
	return payment.Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func (gw *gateway) VerifySignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, gw.keySecret)
}
