package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revelohq/revelo/core/payment"
)

type paymentRepository struct {
	col *mongo.Collection
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *mongo.Database) *paymentRepository {
	return &paymentRepository{col: db.Collection(paymentsCollection)}
}

// paymentRecord is the stored shape; amounts are kept as strings since
// decimal.Decimal has no native BSON representation.
type paymentRecord struct {
	ID          string    `bson:"_id,omitempty"`
	InstituteID string    `bson:"instituteID"`
	Amount      string    `bson:"amount"`
	OrderID     string    `bson:"razorpayOrderID"`
	PaymentID   string    `bson:"razorpayPaymentID"`
	Verified    bool      `bson:"verified"`
	Purpose     string    `bson:"purpose"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func toRecord(p payment.Payment) paymentRecord {
	return paymentRecord{
		ID:          p.ID,
		InstituteID: p.InstituteID,
		Amount:      p.Amount.String(),
		OrderID:     p.OrderID,
		PaymentID:   p.PaymentID,
		Verified:    p.Verified,
		Purpose:     p.Purpose,
		CreatedAt:   p.CreatedAt,
	}
}

func (rec paymentRecord) toPayment() (payment.Payment, error) {
	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return payment.Payment{}, err
	}
	return payment.Payment{
		ID:          rec.ID,
		InstituteID: rec.InstituteID,
		Amount:      amount,
		OrderID:     rec.OrderID,
		PaymentID:   rec.PaymentID,
		Verified:    rec.Verified,
		Purpose:     rec.Purpose,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.ID = uuid.NewString()
	if _, err := repo.col.InsertOne(ctx, toRecord(p)); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id string) (payment.Payment, error) {
	var rec paymentRecord
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, err
	}
	return rec.toPayment()
}
