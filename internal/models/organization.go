package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a registered participant: it owns the donations it creates
// and may reserve donations offered by other organizations.
type Organization struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID   string             `bson:"organizationID" json:"organizationID"` // Business key, e.g. "ORG-1A2B3C4D"
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"`
	Phone            string             `bson:"phone" json:"phone"`
	Address          string             `bson:"address" json:"address"`
	Type             string             `bson:"type" json:"type"` // e.g. "NGO", "CHARITY", "INDIVIDUAL"
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	RegistrationDate time.Time          `bson:"registrationDate" json:"registrationDate"`
}

// OrganizationPatch holds the profile fields an organization may update.
type OrganizationPatch struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}
