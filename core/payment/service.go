package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/revelohq/revelo/core"
)

var (
	// errors
	ErrNotFound           = errors.New("payment not found")
	ErrVerificationFailed = errors.New("payment signature verification failed")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
	}

	Service struct {
		repo    Repository
		gateway Gateway
		conf    *core.Config
	}
)

func NewService(repo Repository, gateway Gateway, conf *core.Config) *Service {
	return &Service{repo: repo, gateway: gateway, conf: conf}
}

// CreateOrder opens a gateway order for the platform fee. The order is
// captured client-side; RecordEventCreation closes the loop.
func (svc *Service) CreateOrder(ctx context.Context, instituteID string) (Order, error) {
	amount := decimal.NewFromInt(svc.conf.PlatformFee)
	receipt := fmt.Sprintf("platform-fee-%s", instituteID)
	order, err := svc.gateway.CreateOrder(ctx, amount, receipt)
	if err != nil {
		return Order{}, &core.ExternalServiceError{Service: "payment gateway", Err: err}
	}
	return order, nil
}

// RecordEventCreation verifies the gateway signature and persists the
// platform-fee payment, returning its id for the event to reference.
// An unverifiable signature is never stored.
func (svc *Service) RecordEventCreation(ctx context.Context, instituteID, orderID, paymentID, signature string) (string, error) {
	if !svc.gateway.VerifySignature(orderID, paymentID, signature) {
		return "", ErrVerificationFailed
	}
	p := Payment{
		InstituteID: instituteID,
		Amount:      decimal.NewFromInt(svc.conf.PlatformFee),
		OrderID:     orderID,
		PaymentID:   paymentID,
		Verified:    true,
		Purpose:     PurposeEventCreation,
		CreatedAt:   time.Now().UTC(),
	}
	p, err := svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return "", pkgerrors.Wrap(err, "recording platform payment")
	}
	return p.ID, nil
}

// Get returns a single payment record.
func (svc *Service) Get(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}
