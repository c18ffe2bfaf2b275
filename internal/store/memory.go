package store

import (
	"context"
	"sync"
	"time"

	"food-redistribution-api-server/internal/models"
)

// MemoryStore is an in-process DonationStore and RequestStore. It backs the
// tests and keeps the same conditional-write contract as the Mongo store:
// every mutation runs under one lock, so a status check and its write are
// indivisible per record.
type MemoryStore struct {
	mu        sync.Mutex
	donations map[string]models.Donation
	requests  map[string]models.DonationRequest

	// FailMarkExpired makes MarkExpired fail for the listed donation IDs.
	// Used to exercise the sweeper's partial-failure isolation.
	FailMarkExpired map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		donations: make(map[string]models.Donation),
		requests:  make(map[string]models.DonationRequest),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations[d.DonationID] = *d
	out := *d
	return &out, nil
}

func (s *MemoryStore) Get(ctx context.Context, donationID string) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[donationID]
	if !ok {
		return nil, ErrNotFound
	}
	out := d
	return &out, nil
}

func (s *MemoryStore) Replace(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[d.DonationID]; !ok {
		return nil, ErrNotFound
	}
	s.donations[d.DonationID] = *d
	out := *d
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, donationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[donationID]; !ok {
		return ErrNotFound
	}
	delete(s.donations, donationID)
	return nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]models.Donation, error) {
	return s.filter(func(models.Donation) bool { return true }), nil
}

func (s *MemoryStore) FindByOrganization(ctx context.Context, organizationID string) ([]models.Donation, error) {
	return s.filter(func(d models.Donation) bool { return d.OrganizationID == organizationID }), nil
}

func (s *MemoryStore) FindByStatus(ctx context.Context, status string) ([]models.Donation, error) {
	return s.filter(func(d models.Donation) bool { return d.Status == status }), nil
}

func (s *MemoryStore) FindExpiringBefore(ctx context.Context, cutoff time.Time, status string) ([]models.Donation, error) {
	return s.filter(func(d models.Donation) bool {
		return d.Status == status && d.ExpiryDate.Before(cutoff)
	}), nil
}

func (s *MemoryStore) FindExpiredBefore(ctx context.Context, cutoff time.Time, notStatus string) ([]models.Donation, error) {
	return s.filter(func(d models.Donation) bool {
		return d.Status != notStatus && d.ExpiryDate.Before(cutoff)
	}), nil
}

func (s *MemoryStore) filter(keep func(models.Donation) bool) []models.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Donation{}
	for _, d := range s.donations {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s *MemoryStore) ReplaceIfStatus(ctx context.Context, d *models.Donation, expect string) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.donations[d.DonationID]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Status != expect {
		return nil, ErrStatusConflict
	}
	s.donations[d.DonationID] = *d
	out := *d
	return &out, nil
}

func (s *MemoryStore) MarkExpired(ctx context.Context, donationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.FailMarkExpired[donationID]; ok {
		return &StoreError{Err: err}
	}
	d, ok := s.donations[donationID]
	if !ok {
		return ErrNotFound
	}
	if d.Status == models.StatusExpired {
		return nil
	}
	d.Status = models.StatusExpired
	s.donations[donationID] = d
	return nil
}

func (s *MemoryStore) InsertRequest(ctx context.Context, r *models.DonationRequest) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.RequestID] = *r
	out := *r
	return &out, nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, requestID string) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	out := r
	return &out, nil
}

func (s *MemoryStore) ReplaceRequest(ctx context.Context, r *models.DonationRequest) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.RequestID]; !ok {
		return nil, ErrNotFound
	}
	s.requests[r.RequestID] = *r
	out := *r
	return &out, nil
}

func (s *MemoryStore) FindRequestsByOrganization(ctx context.Context, organizationID string) ([]models.DonationRequest, error) {
	return s.filterRequests(func(r models.DonationRequest) bool { return r.OrganizationID == organizationID }), nil
}

func (s *MemoryStore) FindRequestsByStatus(ctx context.Context, status string) ([]models.DonationRequest, error) {
	return s.filterRequests(func(r models.DonationRequest) bool { return r.Status == status }), nil
}

func (s *MemoryStore) FindRequestByDonation(ctx context.Context, donationID string) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.DonationRequest
	for _, r := range s.requests {
		if r.DonationID != donationID {
			continue
		}
		if latest == nil || r.RequestDate.After(latest.RequestDate) {
			copied := r
			latest = &copied
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryStore) filterRequests(keep func(models.DonationRequest) bool) []models.DonationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.DonationRequest{}
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
