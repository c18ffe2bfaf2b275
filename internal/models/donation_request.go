package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses for the notification ledger.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// DonationRequest is the notification ledger entry behind one reservation.
// The Donation itself is the source of truth for reservation state; these
// records are written only by Reserve and Decide, never resolved on their own.
// They exist so a requester can still poll the outcome of a rejected
// reservation after the donation's requester fields have been cleared.
type DonationRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID      string             `bson:"requestID" json:"requestID"` // Business key, e.g. "RQ-1A2B3C4D"
	OrganizationID string             `bson:"organizationID" json:"organizationID"`
	DonationID     string             `bson:"donationID" json:"donationID"`
	Status         string             `bson:"status" json:"status"` // PENDING, APPROVED, REJECTED
	RequestDate    time.Time          `bson:"requestDate" json:"requestDate"`

	ProcessedBy       string     `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	ProcessedDate     *time.Time `bson:"processedDate,omitempty" json:"processedDate,omitempty"`
	Notes             string     `bson:"notes,omitempty" json:"notes,omitempty"`
	NotificationShown bool       `bson:"notificationShown" json:"notificationShown"`
}
