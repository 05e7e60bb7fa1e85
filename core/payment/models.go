package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Payment purposes
const (
	PurposeEventCreation  = "EventCreation"
	PurposeTicketPurchase = "TicketPurchase"
)

type (
	// Payment is the record of a platform or ticket transaction. It is
	// created before the Event that references it.
	Payment struct {
		ID          string          `json:"id" bson:"_id,omitempty"`
		InstituteID string          `json:"instituteID" bson:"instituteID"`
		Amount      decimal.Decimal `json:"amount" bson:"amount"`
		OrderID     string          `json:"razorpayOrderID" bson:"razorpayOrderID"`
		PaymentID   string          `json:"razorpayPaymentID" bson:"razorpayPaymentID"`
		Verified    bool            `json:"verified" bson:"verified"`
		Purpose     string          `json:"purpose" bson:"purpose"`
		CreatedAt   time.Time       `json:"created_at" bson:"createdAt"` // UTC
	}

	// Order is a gateway order awaiting client-side capture.
	Order struct {
		ID       string          `json:"id"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		Receipt  string          `json:"receipt"`
	}

	// Gateway is the payment-provider abstraction. Implementations own
	// their timeout/retry semantics.
	Gateway interface {
		CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (Order, error)
		VerifySignature(orderID, paymentID, signature string) bool
	}
)
