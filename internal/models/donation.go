package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation statuses. AVAILABLE is the only entry state; DONATED, REJECTED,
// CANCELLED and EXPIRED are terminal for the request flow.
const (
	StatusAvailable = "AVAILABLE"
	StatusReserved  = "RESERVED"
	StatusDonated   = "DONATED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Donation is the canonical record for one offered batch of food.
// Reservation fields (requestedBy, requestedDate) are only set while a donation
// is RESERVED or after it has been DONATED; a REJECT decision clears them.
// Decision fields (processedBy, processedDate, notes) are set exactly once,
// by the admin decision that resolves a reservation.
type Donation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonationID     string             `bson:"donationID" json:"donationID"` // Business key, e.g. "DN-1A2B3C4D"
	OrganizationID string             `bson:"organizationID" json:"organizationID"`
	FoodType       string             `bson:"foodType" json:"foodType"`
	FoodName       string             `bson:"foodName" json:"foodName"`
	DonorName      string             `bson:"donorName" json:"donorName"`
	Quantity       Quantity           `bson:"quantity" json:"quantity"`
	PickupAddress  string             `bson:"pickupAddress" json:"pickupAddress"`
	ContactPhone   string             `bson:"contactPhone" json:"contactPhone"`
	PhotoURL       string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	ExpiryDate     time.Time          `bson:"expiryDate" json:"expiryDate"`
	CreatedDate    time.Time          `bson:"createdDate" json:"createdDate"`
	Status         string             `bson:"status" json:"status"`

	RequestedBy   string     `bson:"requestedBy,omitempty" json:"requestedBy,omitempty"`
	RequestedDate *time.Time `bson:"requestedDate,omitempty" json:"requestedDate,omitempty"`

	ProcessedBy   string     `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	ProcessedDate *time.Time `bson:"processedDate,omitempty" json:"processedDate,omitempty"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// DonationPatch holds the fields an owner may change after creation.
// Nil fields are left untouched.
type DonationPatch struct {
	FoodType   *string    `json:"foodType"`
	DonorName  *string    `json:"donorName"`
	Quantity   *Quantity  `json:"quantity"`
	ExpiryDate *time.Time `json:"expiryDate"`
}
