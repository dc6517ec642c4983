package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a rent payment for one billing month. At most one payment
// may exist per (user_email, month) pair.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserEmail     string             `bson:"user_email" json:"user_email"`
	Month         string             `bson:"month" json:"month"` // e.g. "2026-09"
	Amount        int64              `bson:"amount" json:"amount"`
	ApartmentNo   string             `bson:"apartment_no,omitempty" json:"apartment_no,omitempty"`
	BlockName     string             `bson:"block_name,omitempty" json:"block_name,omitempty"`
	TransactionID string             `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	PaidAt        time.Time          `bson:"paid_at" json:"paid_at"`
}
