package donation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"food-redistribution-api-server/internal/models"
	"food-redistribution-api-server/internal/store"

	"github.com/google/uuid"
)

// Outcome is an admin's terminal resolution of a reservation.
type Outcome string

const (
	OutcomeApprove Outcome = "APPROVE"
	OutcomeReject  Outcome = "REJECT"
)

// Service owns the donation state machine. Every guarded transition
// (Reserve, Decide, Cancel) goes through the store's conditional write, so
// two racing callers can never both pass a status check: the loser gets a
// StateError. OverrideStatus is the one unguarded path and is reserved for
// administrative correction.
type Service struct {
	Store    store.DonationStore
	Requests store.RequestStore

	// Now is the clock used for creation, reservation and expiry stamps.
	// Nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateDonation validates the donation, forces it AVAILABLE, stamps the
// creation time and assigns its donation ID. Caller-supplied status,
// timestamps and reservation fields are ignored.
func (s *Service) CreateDonation(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	if err := validateDonation(d); err != nil {
		return nil, err
	}

	d.DonationID = fmt.Sprintf("DN-%s", strings.ToUpper(uuid.New().String()[:8]))
	d.Status = models.StatusAvailable
	d.CreatedDate = s.now()
	d.RequestedBy = ""
	d.RequestedDate = nil
	d.ProcessedBy = ""
	d.ProcessedDate = nil
	d.Notes = ""

	return s.Store.Insert(ctx, d)
}

func (s *Service) GetDonationByID(ctx context.Context, donationID string) (*models.Donation, error) {
	return s.Store.Get(ctx, donationID)
}

func (s *Service) ListDonations(ctx context.Context) ([]models.Donation, error) {
	return s.Store.FindAll(ctx)
}

func (s *Service) ListDonationsByOrganization(ctx context.Context, organizationID string) ([]models.Donation, error) {
	return s.Store.FindByOrganization(ctx, organizationID)
}

func (s *Service) ListDonationsByStatus(ctx context.Context, status string) ([]models.Donation, error) {
	return s.Store.FindByStatus(ctx, status)
}

// UpdateDonation applies the non-nil fields of patch onto the existing
// record. It never changes status.
func (s *Service) UpdateDonation(ctx context.Context, donationID string, patch models.DonationPatch) (*models.Donation, error) {
	existing, err := s.Store.Get(ctx, donationID)
	if err != nil {
		return nil, err
	}

	if patch.FoodType != nil {
		existing.FoodType = *patch.FoodType
	}
	if patch.DonorName != nil {
		existing.DonorName = *patch.DonorName
	}
	if patch.Quantity != nil {
		existing.Quantity = *patch.Quantity
	}
	if patch.ExpiryDate != nil {
		existing.ExpiryDate = *patch.ExpiryDate
	}

	return s.Store.Replace(ctx, existing)
}

// OverrideStatus overwrites the status unconditionally, bypassing the
// transition guards. Administrative escape hatch only; the guarded flows
// (Reserve, Decide, Cancel, the sweeper) never call it.
func (s *Service) OverrideStatus(ctx context.Context, donationID, newStatus string) (*models.Donation, error) {
	existing, err := s.Store.Get(ctx, donationID)
	if err != nil {
		return nil, err
	}
	existing.Status = newStatus
	return s.Store.Replace(ctx, existing)
}

// CancelDonation withdraws an offer. Only an AVAILABLE donation can be
// cancelled.
func (s *Service) CancelDonation(ctx context.Context, donationID string) (*models.Donation, error) {
	existing, err := s.Store.Get(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.StatusAvailable {
		return nil, &StateError{Reason: "can only cancel donations that are in AVAILABLE status"}
	}

	existing.Status = models.StatusCancelled
	updated, err := s.Store.ReplaceIfStatus(ctx, existing, models.StatusAvailable)
	if err == store.ErrStatusConflict {
		return nil, &StateError{Reason: "can only cancel donations that are in AVAILABLE status"}
	}
	return updated, err
}

func (s *Service) DeleteDonation(ctx context.Context, donationID string) error {
	return s.Store.Delete(ctx, donationID)
}

// ListExpiring returns AVAILABLE donations whose expiry date falls within
// the next withinDays days.
func (s *Service) ListExpiring(ctx context.Context, withinDays int) ([]models.Donation, error) {
	cutoff := s.now().AddDate(0, 0, withinDays)
	return s.Store.FindExpiringBefore(ctx, cutoff, models.StatusAvailable)
}

// ListExpired returns every donation past its expiry date that the sweeper
// has not yet marked EXPIRED, whatever its current status.
func (s *Service) ListExpired(ctx context.Context) ([]models.Donation, error) {
	return s.Store.FindExpiredBefore(ctx, s.now(), models.StatusExpired)
}

// ListAvailableExcluding is the discovery feed: AVAILABLE donations offered
// by every organization except the requester's own.
func (s *Service) ListAvailableExcluding(ctx context.Context, organizationID string) ([]models.Donation, error) {
	available, err := s.Store.FindByStatus(ctx, models.StatusAvailable)
	if err != nil {
		return nil, err
	}

	others := []models.Donation{}
	for _, d := range available {
		if d.OrganizationID != organizationID {
			others = append(others, d)
		}
	}
	return others, nil
}

// Reserve claims an AVAILABLE donation for the requesting organization.
// The status check and the write are one conditional replace: of N
// concurrent reservations exactly one wins, the rest get a StateError.
func (s *Service) Reserve(ctx context.Context, donationID, requestingOrgID string) (*models.Donation, error) {
	existing, err := s.Store.Get(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.StatusAvailable {
		return nil, &StateError{Reason: "this donation is no longer available"}
	}
	if existing.OrganizationID == requestingOrgID {
		return nil, &StateError{Reason: "organizations cannot reserve their own donations"}
	}

	requestedAt := s.now()
	existing.Status = models.StatusReserved
	existing.RequestedBy = requestingOrgID
	existing.RequestedDate = &requestedAt

	updated, err := s.Store.ReplaceIfStatus(ctx, existing, models.StatusAvailable)
	if err == store.ErrStatusConflict {
		return nil, &StateError{Reason: "this donation is no longer available"}
	}
	if err != nil {
		return nil, err
	}

	// Ledger entry so the requester can poll the outcome even after a
	// rejection clears the donation's requester fields. The donation above
	// is authoritative; a ledger write failure is logged, not fatal.
	entry := &models.DonationRequest{
		RequestID:      fmt.Sprintf("RQ-%s", strings.ToUpper(uuid.New().String()[:8])),
		OrganizationID: requestingOrgID,
		DonationID:     donationID,
		Status:         models.RequestPending,
		RequestDate:    requestedAt,
	}
	if _, err := s.Requests.InsertRequest(ctx, entry); err != nil {
		log.Printf("Failed to record request ledger entry for donation %s: %v", donationID, err)
	}

	return updated, nil
}

// Decide resolves a RESERVED donation. APPROVE moves it to DONATED; REJECT
// moves it to REJECTED and clears the requester fields (the record shows no
// live claimant). Returns the updated donation and its resolved ledger
// entry, if one exists.
func (s *Service) Decide(ctx context.Context, donationID, adminID string, outcome Outcome, notes string) (*models.Donation, *models.DonationRequest, error) {
	existing, err := s.Store.Get(ctx, donationID)
	if err != nil {
		return nil, nil, err
	}
	if existing.Status != models.StatusReserved {
		return nil, nil, &StateError{Reason: "can only decide donations that are in RESERVED status"}
	}

	decidedAt := s.now()
	existing.ProcessedBy = adminID
	existing.ProcessedDate = &decidedAt
	existing.Notes = notes

	switch outcome {
	case OutcomeApprove:
		existing.Status = models.StatusDonated
	case OutcomeReject:
		existing.Status = models.StatusRejected
		existing.RequestedBy = ""
		existing.RequestedDate = nil
	default:
		return nil, nil, &StateError{Reason: fmt.Sprintf("unknown decision outcome %q", outcome)}
	}

	updated, err := s.Store.ReplaceIfStatus(ctx, existing, models.StatusReserved)
	if err == store.ErrStatusConflict {
		return nil, nil, &StateError{Reason: "can only decide donations that are in RESERVED status"}
	}
	if err != nil {
		return nil, nil, err
	}

	entry := s.resolveLedger(ctx, donationID, adminID, outcome, notes, decidedAt)
	return updated, entry, nil
}

func (s *Service) resolveLedger(ctx context.Context, donationID, adminID string, outcome Outcome, notes string, decidedAt time.Time) *models.DonationRequest {
	entry, err := s.Requests.FindRequestByDonation(ctx, donationID)
	if err != nil {
		log.Printf("No request ledger entry to resolve for donation %s: %v", donationID, err)
		return nil
	}

	if outcome == OutcomeApprove {
		entry.Status = models.RequestApproved
	} else {
		entry.Status = models.RequestRejected
	}
	entry.ProcessedBy = adminID
	entry.ProcessedDate = &decidedAt
	entry.Notes = notes
	entry.NotificationShown = false

	updated, err := s.Requests.ReplaceRequest(ctx, entry)
	if err != nil {
		log.Printf("Failed to resolve request ledger entry %s: %v", entry.RequestID, err)
		return entry
	}
	return updated
}

// ListPendingReservations is the admin inbox, derived from the donations
// themselves: every donation currently RESERVED.
func (s *Service) ListPendingReservations(ctx context.Context) ([]models.Donation, error) {
	return s.Store.FindByStatus(ctx, models.StatusReserved)
}

func (s *Service) ListRequestsByOrganization(ctx context.Context, organizationID string) ([]models.DonationRequest, error) {
	return s.Requests.FindRequestsByOrganization(ctx, organizationID)
}

func (s *Service) ListPendingRequests(ctx context.Context) ([]models.DonationRequest, error) {
	return s.Requests.FindRequestsByStatus(ctx, models.RequestPending)
}

// MarkNotificationShown records that the requester's client has displayed
// the decision outcome, so it is not shown again.
func (s *Service) MarkNotificationShown(ctx context.Context, requestID string) (*models.DonationRequest, error) {
	entry, err := s.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	entry.NotificationShown = true
	return s.Requests.ReplaceRequest(ctx, entry)
}

func validateDonation(d *models.Donation) error {
	if strings.TrimSpace(d.DonorName) == "" {
		return &ValidationError{Field: "donorName", Reason: "donor name is required"}
	}
	if strings.TrimSpace(d.FoodType) == "" {
		return &ValidationError{Field: "foodType", Reason: "food type is required"}
	}
	if strings.TrimSpace(d.FoodName) == "" {
		return &ValidationError{Field: "foodName", Reason: "food name is required"}
	}
	if d.Quantity.Value <= 0 {
		return &ValidationError{Field: "quantity", Reason: "quantity is required"}
	}
	if strings.TrimSpace(d.Quantity.Unit) == "" {
		return &ValidationError{Field: "quantityUnit", Reason: "quantity unit is required"}
	}
	if d.ExpiryDate.IsZero() {
		return &ValidationError{Field: "expiryDate", Reason: "expiry date is required"}
	}
	if strings.TrimSpace(d.PickupAddress) == "" {
		return &ValidationError{Field: "pickupAddress", Reason: "pickup address is required"}
	}
	if strings.TrimSpace(d.ContactPhone) == "" {
		return &ValidationError{Field: "contactPhone", Reason: "contact phone is required"}
	}
	return nil
}
