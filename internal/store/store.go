// Package store encapsulates MongoDB client management and collection helpers.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tajapart/internal/config"
)

// Collection names used across the service.
const (
	CollectionApartments    = "apartments"
	CollectionUsers         = "users"
	CollectionAgreements    = "agreements"
	CollectionAnnouncements = "announcements"
	CollectionCoupons       = "coupons"
	CollectionPayments      = "payments"
)

// Manager owns the MongoDB client and the configured database handle. It is
// created once at process start, injected into every repository, and closed
// on shutdown.
type Manager struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewManager connects to MongoDB using the supplied configuration and
// verifies connectivity with a ping.
func NewManager(ctx context.Context, cfg *config.Config) (*Manager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Manager{
		client: client,
		db:     client.Database(cfg.MongoDB),
	}, nil
}

// Collection returns a collection handle for the given name.
func (m *Manager) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *Manager) Apartments() *mongo.Collection    { return m.Collection(CollectionApartments) }
func (m *Manager) Users() *mongo.Collection         { return m.Collection(CollectionUsers) }
func (m *Manager) Agreements() *mongo.Collection    { return m.Collection(CollectionAgreements) }
func (m *Manager) Announcements() *mongo.Collection { return m.Collection(CollectionAnnouncements) }
func (m *Manager) Coupons() *mongo.Collection       { return m.Collection(CollectionCoupons) }
func (m *Manager) Payments() *mongo.Collection      { return m.Collection(CollectionPayments) }

// Ping verifies the connection is still alive; used by the health endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique indexes that back the domain keys. The
// unique constraints close the read-check-then-write race on upserts: a
// concurrent duplicate insert surfaces as a duplicate key error instead of a
// second document.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		m.Users(): {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		}},
		m.Apartments(): {{
			Keys:    bson.D{{Key: "apartment_no", Value: 1}},
			Options: options.Index().SetName("apartment_no_unique").SetUnique(true),
		}},
		m.Agreements(): {{
			Keys:    bson.D{{Key: "apartment_no", Value: 1}},
			Options: options.Index().SetName("apartment_no_unique").SetUnique(true),
		}, {
			Keys:    bson.D{{Key: "user_email", Value: 1}},
			Options: options.Index().SetName("user_email_idx"),
		}},
		m.Coupons(): {{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("code_unique").SetUnique(true),
		}},
		m.Payments(): {{
			Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "month", Value: 1}},
			Options: options.Index().SetName("user_month_unique").SetUnique(true),
		}},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll.Name(), err)
		}
	}

	return nil
}

// Close disconnects the Mongo client.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
