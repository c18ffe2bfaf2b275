package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-redistribution-api-server/internal/models"
)

// ErrNotFound is returned when no record exists for the given identity.
var ErrNotFound = errors.New("record not found")

// ErrStatusConflict is returned by a conditional write whose status
// precondition no longer holds. The losing side of two racing transitions
// sees this error, never a torn record.
var ErrStatusConflict = errors.New("status precondition failed")

// StoreError wraps a transient persistence failure (store unreachable,
// timeout). Callers may retry; the store itself does not.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %v", e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// DonationStore is the record store for donations and their request ledger.
// All status transitions with a precondition go through ReplaceIfStatus or
// MarkExpired, which must apply the check and the write as one atomic step
// per record.
type DonationStore interface {
	Insert(ctx context.Context, d *models.Donation) (*models.Donation, error)
	Get(ctx context.Context, donationID string) (*models.Donation, error)
	Replace(ctx context.Context, d *models.Donation) (*models.Donation, error)
	Delete(ctx context.Context, donationID string) error

	FindAll(ctx context.Context) ([]models.Donation, error)
	FindByOrganization(ctx context.Context, organizationID string) ([]models.Donation, error)
	FindByStatus(ctx context.Context, status string) ([]models.Donation, error)
	// FindExpiringBefore returns records with the given status whose expiry
	// date is strictly before cutoff.
	FindExpiringBefore(ctx context.Context, cutoff time.Time, status string) ([]models.Donation, error)
	// FindExpiredBefore returns records whose expiry date is strictly before
	// cutoff and whose status is not notStatus.
	FindExpiredBefore(ctx context.Context, cutoff time.Time, notStatus string) ([]models.Donation, error)

	// ReplaceIfStatus replaces the stored record with d only if the stored
	// status still equals expect. Returns ErrStatusConflict if it does not,
	// ErrNotFound if the record is gone.
	ReplaceIfStatus(ctx context.Context, d *models.Donation, expect string) (*models.Donation, error)
	// MarkExpired sets the record's status to EXPIRED unless it already is.
	// Re-applying it to an EXPIRED record is a no-op.
	MarkExpired(ctx context.Context, donationID string) error
}

// RequestStore persists the notification ledger.
type RequestStore interface {
	InsertRequest(ctx context.Context, r *models.DonationRequest) (*models.DonationRequest, error)
	GetRequest(ctx context.Context, requestID string) (*models.DonationRequest, error)
	ReplaceRequest(ctx context.Context, r *models.DonationRequest) (*models.DonationRequest, error)
	FindRequestsByOrganization(ctx context.Context, organizationID string) ([]models.DonationRequest, error)
	FindRequestsByStatus(ctx context.Context, status string) ([]models.DonationRequest, error)
	// FindRequestByDonation returns the most recent ledger entry for a
	// donation, or ErrNotFound.
	FindRequestByDonation(ctx context.Context, donationID string) (*models.DonationRequest, error)
}
