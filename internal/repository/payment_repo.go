package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tajapart/internal/model"
)

type paymentCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// PaymentRepository defines operations for rent payment records.
type PaymentRepository interface {
	FindByUserAndMonth(ctx context.Context, email, month string) (*model.Payment, error)
	Insert(ctx context.Context, p *model.Payment) error
	ListByUser(ctx context.Context, email string) ([]model.Payment, error)
}

type paymentRepository struct {
	coll paymentCollection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(coll paymentCollection) PaymentRepository {
	return &paymentRepository{coll: coll}
}

// FindByUserAndMonth retrieves the payment for one billing month, or nil.
func (r *paymentRepository) FindByUserAndMonth(ctx context.Context, email, month string) (*model.Payment, error) {
	var payment model.Payment
	err := r.coll.FindOne(ctx, bson.M{"user_email": email, "month": month}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

// Insert stores a new payment. A unique-index violation on (user_email,
// month) is reported as ErrDuplicateKey.
func (r *paymentRepository) Insert(ctx context.Context, p *model.Payment) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

// ListByUser returns a user's payment history, newest first.
func (r *paymentRepository) ListByUser(ctx context.Context, email string) ([]model.Payment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_email": email},
		options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := make([]model.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}
