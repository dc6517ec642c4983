package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AgreementPending = "pending"
	AgreementChecked = "checked"
)

// Agreement binds one occupant to one apartment with a lifecycle status.
// Per apartment number the lifecycle is: no agreement -> pending -> checked.
// "checked" is terminal except for deletion, which frees the slot again.
type Agreement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ApartmentNo string             `bson:"apartment_no" json:"apartment_no"`
	UserEmail   string             `bson:"user_email" json:"user_email"`
	UserName    string             `bson:"user_name,omitempty" json:"user_name,omitempty"`
	BlockName   string             `bson:"block_name,omitempty" json:"block_name,omitempty"`
	FloorNo     int                `bson:"floor_no" json:"floor_no"`
	Rent        int64              `bson:"rent" json:"rent"`
	Status      string             `bson:"status" json:"status"`
	RequestDate time.Time          `bson:"request_date" json:"request_date"`
	AcceptDate  *time.Time         `bson:"accept_date,omitempty" json:"accept_date,omitempty"` // set only on transition to checked
}
