package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tajapart/internal/model"
)

type apartmentCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// ApartmentRepository defines read operations over the apartment catalog.
type ApartmentRepository interface {
	List(ctx context.Context) ([]model.Apartment, error)
	Page(ctx context.Context, skip, limit int64) ([]model.Apartment, error)
	Count(ctx context.Context) (int64, error)
}

type apartmentRepository struct {
	coll apartmentCollection
}

// NewApartmentRepository creates a new ApartmentRepository over the
// apartments collection.
func NewApartmentRepository(coll apartmentCollection) ApartmentRepository {
	return &apartmentRepository{coll: coll}
}

// List returns every apartment in stored order.
func (r *apartmentRepository) List(ctx context.Context) ([]model.Apartment, error) {
	return r.find(ctx, nil)
}

// Page returns a slice of apartments in stored order, skipping the first
// skip documents.
func (r *apartmentRepository) Page(ctx context.Context, skip, limit int64) ([]model.Apartment, error) {
	return r.find(ctx, options.Find().SetSkip(skip).SetLimit(limit))
}

func (r *apartmentRepository) find(ctx context.Context, opts *options.FindOptions) ([]model.Apartment, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.coll.Find(ctx, bson.M{}, opts)
	} else {
		cursor, err = r.coll.Find(ctx, bson.M{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query apartments: %w", err)
	}
	defer cursor.Close(ctx)

	apartments := make([]model.Apartment, 0)
	if err := cursor.All(ctx, &apartments); err != nil {
		return nil, fmt.Errorf("failed to decode apartments: %w", err)
	}
	return apartments, nil
}

// Count returns the total number of apartments.
func (r *apartmentRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count apartments: %w", err)
	}
	return count, nil
}
