package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Admin matches the document in MongoDB. Admins resolve reservations and may
// use the raw status override; they never own donations.
type Admin struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`
}
