package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tajapart/internal/model"
)

type announcementCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// AnnouncementRepository defines operations for the announcements board.
type AnnouncementRepository interface {
	Insert(ctx context.Context, a *model.Announcement) error
	List(ctx context.Context) ([]model.Announcement, error)
}

type announcementRepository struct {
	coll announcementCollection
}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository(coll announcementCollection) AnnouncementRepository {
	return &announcementRepository{coll: coll}
}

func (r *announcementRepository) Insert(ctx context.Context, a *model.Announcement) error {
	res, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = id
	}
	return nil
}

// List returns announcements newest first.
func (r *announcementRepository) List(ctx context.Context) ([]model.Announcement, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer cursor.Close(ctx)

	announcements := make([]model.Announcement, 0)
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, fmt.Errorf("failed to decode announcements: %w", err)
	}
	return announcements, nil
}
