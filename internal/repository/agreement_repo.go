package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tajapart/internal/model"
)

type agreementCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// AgreementRepository defines operations for the agreement ledger.
type AgreementRepository interface {
	FindByApartmentNo(ctx context.Context, apartmentNo string) (*model.Agreement, error)
	FindByEmail(ctx context.Context, email string) (*model.Agreement, error)
	FindCheckedByEmail(ctx context.Context, email string) (*model.Agreement, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Agreement, error)
	Insert(ctx context.Context, agreement *model.Agreement) error
	SetChecked(ctx context.Context, apartmentNo string, acceptDate time.Time) (*model.Agreement, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type agreementRepository struct {
	coll agreementCollection
}

// NewAgreementRepository creates a new AgreementRepository over the
// agreements collection.
func NewAgreementRepository(coll agreementCollection) AgreementRepository {
	return &agreementRepository{coll: coll}
}

func (r *agreementRepository) FindByApartmentNo(ctx context.Context, apartmentNo string) (*model.Agreement, error) {
	return r.findOne(ctx, bson.M{"apartment_no": apartmentNo})
}

func (r *agreementRepository) FindByEmail(ctx context.Context, email string) (*model.Agreement, error) {
	return r.findOne(ctx, bson.M{"user_email": email})
}

// FindCheckedByEmail retrieves the user's checked agreement, if any. The
// user_email index is not unique, so a plain email lookup can return an
// arbitrary agreement; role reconciliation must only see checked ones.
func (r *agreementRepository) FindCheckedByEmail(ctx context.Context, email string) (*model.Agreement, error) {
	return r.findOne(ctx, bson.M{"user_email": email, "status": model.AgreementChecked})
}

func (r *agreementRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Agreement, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *agreementRepository) findOne(ctx context.Context, filter bson.M) (*model.Agreement, error) {
	var agreement model.Agreement
	err := r.coll.FindOne(ctx, filter).Decode(&agreement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find agreement: %w", err)
	}
	return &agreement, nil
}

// Insert stores a new agreement document. A unique-index violation on the
// apartment number is reported as ErrDuplicateKey so callers can fall back
// to the stored record when a concurrent request wins the insert.
func (r *agreementRepository) Insert(ctx context.Context, agreement *model.Agreement) error {
	res, err := r.coll.InsertOne(ctx, agreement)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert agreement: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		agreement.ID = id
	}
	return nil
}

// SetChecked transitions the agreement for apartmentNo to "checked", touching
// only status and accept_date, and returns the updated document. Returns nil
// when no agreement exists for the apartment.
func (r *agreementRepository) SetChecked(ctx context.Context, apartmentNo string, acceptDate time.Time) (*model.Agreement, error) {
	var agreement model.Agreement
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"apartment_no": apartmentNo},
		bson.M{"$set": bson.M{"status": model.AgreementChecked, "accept_date": acceptDate}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&agreement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark agreement checked: %w", err)
	}
	return &agreement, nil
}

// DeleteByID removes the agreement and reports whether a document was deleted.
func (r *agreementRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete agreement: %w", err)
	}
	return res.DeletedCount > 0, nil
}
