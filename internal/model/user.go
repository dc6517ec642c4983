package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleGuest  = "guest"
	RoleUser   = "user"
	RoleMember = "member"
)

// User represents an account in the directory, keyed by email.
// The role field is never set arbitrarily: it tracks the lifecycle of the
// user's rental agreement (see service/membership).
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	PhotoURL  string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether role is one of the recognized membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGuest, RoleUser, RoleMember:
		return true
	}
	return false
}
