package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-redistribution-api-server/internal/donation"
	"food-redistribution-api-server/internal/models"
	"food-redistribution-api-server/internal/store"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestSweeper() (*Sweeper, *donation.Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	svc := &donation.Service{
		Store:    mem,
		Requests: mem,
		Now:      func() time.Time { return testNow },
	}
	return &Sweeper{Service: svc, Interval: time.Hour}, svc, mem
}

func createDonation(t *testing.T, svc *donation.Service, orgID string, expiry time.Time) *models.Donation {
	t.Helper()
	d, err := svc.CreateDonation(context.Background(), &models.Donation{
		OrganizationID: orgID,
		FoodType:       "Bakery",
		FoodName:       "Bread",
		DonorName:      "Corner Bakery",
		Quantity:       models.Quantity{Unit: "loaves", Value: 12},
		PickupAddress:  "456 Oak St, City",
		ContactPhone:   "987-654-3210",
		ExpiryDate:     expiry,
	})
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return d
}

func TestSweepOnce(t *testing.T) {
	sweep, svc, _ := newTestSweeper()

	overdueAvailable := createDonation(t, svc, "ORG-A", testNow.Add(-time.Hour))
	overdueReserved := createDonation(t, svc, "ORG-A", testNow.Add(-2*time.Hour))
	svc.Reserve(context.Background(), overdueReserved.DonationID, "ORG-B")
	fresh := createDonation(t, svc, "ORG-A", testNow.Add(48*time.Hour))

	swept := sweep.SweepOnce(context.Background())
	if swept != 2 {
		t.Fatalf("swept %d donations, want 2", swept)
	}

	for _, id := range []string{overdueAvailable.DonationID, overdueReserved.DonationID} {
		d, _ := svc.GetDonationByID(context.Background(), id)
		if d.Status != models.StatusExpired {
			t.Errorf("donation %s status = %q, want EXPIRED", id, d.Status)
		}
	}

	d, _ := svc.GetDonationByID(context.Background(), fresh.DonationID)
	if d.Status != models.StatusAvailable {
		t.Errorf("fresh donation status = %q, want AVAILABLE", d.Status)
	}

	// Sweeping again finds nothing: ListExpired filters EXPIRED out.
	remaining, _ := svc.ListExpired(context.Background())
	if len(remaining) != 0 {
		t.Errorf("ListExpired after sweep = %+v, want empty", remaining)
	}
	if again := sweep.SweepOnce(context.Background()); again != 0 {
		t.Errorf("second sweep expired %d donations, want 0", again)
	}
}

func TestSweepPartialFailureIsolation(t *testing.T) {
	sweep, svc, mem := newTestSweeper()

	failing := createDonation(t, svc, "ORG-A", testNow.Add(-time.Hour))
	healthy := createDonation(t, svc, "ORG-B", testNow.Add(-time.Hour))

	mem.FailMarkExpired = map[string]error{failing.DonationID: errors.New("write timeout")}

	swept := sweep.SweepOnce(context.Background())
	if swept != 1 {
		t.Fatalf("swept %d donations, want 1 despite the failure", swept)
	}

	d, _ := svc.GetDonationByID(context.Background(), healthy.DonationID)
	if d.Status != models.StatusExpired {
		t.Errorf("healthy donation status = %q, want EXPIRED", d.Status)
	}

	// The failed record is retried on a later pass.
	mem.FailMarkExpired = nil
	if swept := sweep.SweepOnce(context.Background()); swept != 1 {
		t.Fatalf("retry sweep expired %d donations, want 1", swept)
	}
	d, _ = svc.GetDonationByID(context.Background(), failing.DonationID)
	if d.Status != models.StatusExpired {
		t.Errorf("failing donation status = %q, want EXPIRED after retry", d.Status)
	}
}

func TestSweepOverridesLateReservation(t *testing.T) {
	sweep, svc, _ := newTestSweeper()

	// Already past its expiry when the reservation lands.
	d := createDonation(t, svc, "ORG-A", testNow.Add(-time.Hour))

	reserved, err := svc.Reserve(context.Background(), d.DonationID, "ORG-B")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if reserved.Status != models.StatusReserved {
		t.Fatalf("status = %q, want RESERVED", reserved.Status)
	}

	// The next sweep wins: the record ends EXPIRED, not half-reserved.
	sweep.SweepOnce(context.Background())

	final, _ := svc.GetDonationByID(context.Background(), d.DonationID)
	if final.Status != models.StatusExpired {
		t.Fatalf("final status = %q, want EXPIRED", final.Status)
	}
}
