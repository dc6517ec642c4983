package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Apartment is a catalog entry for a rentable unit. At most one active
// agreement may reference an apartment number at a time.
type Apartment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ApartmentNo string             `bson:"apartment_no" json:"apartment_no"`
	BlockName   string             `bson:"block_name,omitempty" json:"block_name,omitempty"`
	FloorNo     int                `bson:"floor_no" json:"floor_no"`
	Rent        int64              `bson:"rent" json:"rent"` // monthly rent in whole currency units
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
}
