package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-redistribution-api-server/internal/models"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func seedDonation(t *testing.T, s *MemoryStore, id, status string, expiry time.Time) models.Donation {
	t.Helper()
	d := models.Donation{
		DonationID:     id,
		OrganizationID: "ORG-A",
		FoodType:       "Dairy",
		FoodName:       "Milk",
		DonorName:      "Dairy Co",
		Quantity:       models.Quantity{Unit: "l", Value: 10},
		PickupAddress:  "1 Dairy Rd",
		ContactPhone:   "555-0100",
		ExpiryDate:     expiry,
		CreatedDate:    testNow,
		Status:         status,
	}
	if _, err := s.Insert(context.Background(), &d); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return d
}

func TestReplaceIfStatus(t *testing.T) {
	s := NewMemoryStore()
	d := seedDonation(t, s, "DN-1", models.StatusAvailable, testNow.Add(time.Hour))

	d.Status = models.StatusReserved
	d.RequestedBy = "ORG-B"
	updated, err := s.ReplaceIfStatus(context.Background(), &d, models.StatusAvailable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.StatusReserved {
		t.Errorf("status = %q, want RESERVED", updated.Status)
	}

	// Second conditional write against the stale expectation loses.
	d.RequestedBy = "ORG-C"
	_, err = s.ReplaceIfStatus(context.Background(), &d, models.StatusAvailable)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}

	stored, _ := s.Get(context.Background(), "DN-1")
	if stored.RequestedBy != "ORG-B" {
		t.Errorf("losing write overwrote the record: requestedBy = %q", stored.RequestedBy)
	}

	missing := d
	missing.DonationID = "DN-MISSING"
	if _, err := s.ReplaceIfStatus(context.Background(), &missing, models.StatusAvailable); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkExpired(t *testing.T) {
	s := NewMemoryStore()
	seedDonation(t, s, "DN-1", models.StatusReserved, testNow.Add(-time.Hour))

	if err := s.MarkExpired(context.Background(), "DN-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, _ := s.Get(context.Background(), "DN-1")
	if d.Status != models.StatusExpired {
		t.Errorf("status = %q, want EXPIRED", d.Status)
	}

	// Idempotent on an already expired record.
	if err := s.MarkExpired(context.Background(), "DN-1"); err != nil {
		t.Fatalf("re-expire returned %v, want nil", err)
	}

	if err := s.MarkExpired(context.Background(), "DN-MISSING"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpiryQueries(t *testing.T) {
	s := NewMemoryStore()
	seedDonation(t, s, "DN-OVERDUE", models.StatusAvailable, testNow.Add(-time.Hour))
	seedDonation(t, s, "DN-OVERDUE-DONE", models.StatusExpired, testNow.Add(-2*time.Hour))
	seedDonation(t, s, "DN-FRESH", models.StatusAvailable, testNow.Add(24*time.Hour))

	expired, err := s.FindExpiredBefore(context.Background(), testNow, models.StatusExpired)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expired) != 1 || expired[0].DonationID != "DN-OVERDUE" {
		t.Fatalf("expired = %+v, want only DN-OVERDUE", expired)
	}

	expiring, err := s.FindExpiringBefore(context.Background(), testNow.Add(48*time.Hour), models.StatusAvailable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expiring) != 2 {
		t.Fatalf("expiring has %d records, want 2", len(expiring))
	}
}

func TestRequestLedgerStore(t *testing.T) {
	s := NewMemoryStore()

	first := models.DonationRequest{
		RequestID:      "RQ-1",
		OrganizationID: "ORG-B",
		DonationID:     "DN-1",
		Status:         models.RequestPending,
		RequestDate:    testNow.Add(-time.Hour),
	}
	second := models.DonationRequest{
		RequestID:      "RQ-2",
		OrganizationID: "ORG-C",
		DonationID:     "DN-1",
		Status:         models.RequestPending,
		RequestDate:    testNow,
	}
	s.InsertRequest(context.Background(), &first)
	s.InsertRequest(context.Background(), &second)

	latest, err := s.FindRequestByDonation(context.Background(), "DN-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.RequestID != "RQ-2" {
		t.Errorf("latest = %q, want RQ-2", latest.RequestID)
	}

	if _, err := s.FindRequestByDonation(context.Background(), "DN-NONE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	byOrg, _ := s.FindRequestsByOrganization(context.Background(), "ORG-B")
	if len(byOrg) != 1 || byOrg[0].RequestID != "RQ-1" {
		t.Fatalf("byOrg = %+v, want only RQ-1", byOrg)
	}
}
