package donation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"food-redistribution-api-server/internal/models"
	"food-redistribution-api-server/internal/store"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	svc := &Service{
		Store:    mem,
		Requests: mem,
		Now:      func() time.Time { return testNow },
	}
	return svc, mem
}

func validDonation(orgID string) *models.Donation {
	return &models.Donation{
		OrganizationID: orgID,
		FoodType:       "Vegetables",
		FoodName:       "Carrots",
		DonorName:      "Fresh Farm",
		Quantity:       models.Quantity{Unit: "kg", Value: 25},
		PickupAddress:  "123 Main St, City",
		ContactPhone:   "123-456-7890",
		ExpiryDate:     testNow.Add(48 * time.Hour),
	}
}

func TestCreateDonation(t *testing.T) {
	svc, _ := newTestService()

	input := validDonation("ORG-A")
	// Caller-supplied status and stamps must be ignored.
	input.Status = models.StatusDonated
	input.CreatedDate = testNow.Add(-time.Hour)
	input.RequestedBy = "ORG-B"
	input.ProcessedBy = "someone"

	created, err := svc.CreateDonation(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != models.StatusAvailable {
		t.Errorf("status = %q, want AVAILABLE", created.Status)
	}
	if !created.CreatedDate.Equal(testNow) {
		t.Errorf("createdDate = %v, want %v", created.CreatedDate, testNow)
	}
	if created.DonationID == "" {
		t.Error("donationID not assigned")
	}
	if created.RequestedBy != "" || created.RequestedDate != nil {
		t.Error("reservation fields set on a fresh donation")
	}
	if created.ProcessedBy != "" || created.ProcessedDate != nil || created.Notes != "" {
		t.Error("decision fields set on a fresh donation")
	}
}

func TestCreateDonationValidation(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*models.Donation)
	}{
		{"donorName", func(d *models.Donation) { d.DonorName = "  " }},
		{"foodType", func(d *models.Donation) { d.FoodType = "" }},
		{"foodName", func(d *models.Donation) { d.FoodName = "" }},
		{"quantity", func(d *models.Donation) { d.Quantity.Value = 0 }},
		{"quantityUnit", func(d *models.Donation) { d.Quantity.Unit = " " }},
		{"expiryDate", func(d *models.Donation) { d.ExpiryDate = time.Time{} }},
		{"pickupAddress", func(d *models.Donation) { d.PickupAddress = "" }},
		{"contactPhone", func(d *models.Donation) { d.ContactPhone = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			svc, _ := newTestService()
			d := validDonation("ORG-A")
			tc.mutate(d)

			_, err := svc.CreateDonation(context.Background(), d)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tc.field {
				t.Errorf("field = %q, want %q", validationErr.Field, tc.field)
			}
		})
	}
}

func TestGetDonationByIDNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetDonationByID(context.Background(), "DN-MISSING")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReserve(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reserved, err := svc.Reserve(context.Background(), created.DonationID, "ORG-B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reserved.Status != models.StatusReserved {
		t.Errorf("status = %q, want RESERVED", reserved.Status)
	}
	if reserved.RequestedBy != "ORG-B" {
		t.Errorf("requestedBy = %q, want ORG-B", reserved.RequestedBy)
	}
	if reserved.RequestedDate == nil || !reserved.RequestedDate.Equal(testNow) {
		t.Errorf("requestedDate = %v, want %v", reserved.RequestedDate, testNow)
	}

	// Already reserved.
	_, err = svc.Reserve(context.Background(), created.DonationID, "ORG-C")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError for reserving a RESERVED donation, got %v", err)
	}
}

func TestReserveOwnDonation(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))

	_, err := svc.Reserve(context.Background(), created.DonationID, "ORG-A")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError for self-reservation, got %v", err)
	}

	d, _ := svc.GetDonationByID(context.Background(), created.DonationID)
	if d.Status != models.StatusAvailable {
		t.Errorf("status changed to %q by a failed reservation", d.Status)
	}
}

func TestReserveConcurrentOneWinner(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-OWNER"))

	const callers = 32
	var wg sync.WaitGroup
	results := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orgID := "ORG-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
			_, results[i] = svc.Reserve(context.Background(), created.DonationID, orgID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range results {
		if err == nil {
			wins++
			continue
		}
		var stateErr *StateError
		if !errors.As(err, &stateErr) {
			t.Errorf("caller %d: expected StateError, got %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("got %d winners, want exactly 1", wins)
	}

	final, _ := svc.GetDonationByID(context.Background(), created.DonationID)
	if final.Status != models.StatusReserved || final.RequestedBy == "" {
		t.Errorf("final record status=%q requestedBy=%q, want one RESERVED with a requester", final.Status, final.RequestedBy)
	}
}

func TestDecideApprove(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.Reserve(context.Background(), created.DonationID, "ORG-B")

	decided, entry, err := svc.Decide(context.Background(), created.DonationID, "admin1", OutcomeApprove, "pickup at noon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.Status != models.StatusDonated {
		t.Errorf("status = %q, want DONATED", decided.Status)
	}
	if decided.ProcessedBy != "admin1" || decided.ProcessedDate == nil {
		t.Error("decision fields not stamped")
	}
	if decided.Notes != "pickup at noon" {
		t.Errorf("notes = %q", decided.Notes)
	}
	if decided.RequestedBy != "ORG-B" {
		t.Errorf("approval cleared requestedBy, got %q", decided.RequestedBy)
	}

	if entry == nil {
		t.Fatal("no ledger entry returned")
	}
	if entry.Status != models.RequestApproved {
		t.Errorf("ledger status = %q, want APPROVED", entry.Status)
	}
	if entry.NotificationShown {
		t.Error("fresh decision already marked as shown")
	}
}

func TestDecideReject(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.Reserve(context.Background(), created.DonationID, "ORG-B")

	decided, entry, err := svc.Decide(context.Background(), created.DonationID, "admin1", OutcomeReject, "out of stock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decided.Status != models.StatusRejected {
		t.Errorf("status = %q, want REJECTED", decided.Status)
	}
	if decided.RequestedBy != "" || decided.RequestedDate != nil {
		t.Error("reject did not clear the reservation fields")
	}
	if decided.ProcessedBy != "admin1" || decided.Notes != "out of stock" {
		t.Error("decision fields not stamped")
	}

	if entry == nil || entry.Status != models.RequestRejected {
		t.Fatalf("ledger entry = %+v, want REJECTED", entry)
	}
	// The ledger still knows who asked, even though the donation no longer does.
	if entry.OrganizationID != "ORG-B" {
		t.Errorf("ledger organizationID = %q, want ORG-B", entry.OrganizationID)
	}
}

func TestDecideRequiresReserved(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))

	_, _, err := svc.Decide(context.Background(), created.DonationID, "admin1", OutcomeApprove, "")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError deciding an AVAILABLE donation, got %v", err)
	}
}

func TestRejectedDonationIsNotReReservable(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))

	if _, err := svc.Reserve(context.Background(), created.DonationID, "ORG-B"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, _, err := svc.Decide(context.Background(), created.DonationID, "admin1", OutcomeReject, "out of stock"); err != nil {
		t.Fatalf("decide: %v", err)
	}

	_, err := svc.Reserve(context.Background(), created.DonationID, "ORG-C")
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError reserving a REJECTED donation, got %v", err)
	}

	final, _ := svc.GetDonationByID(context.Background(), created.DonationID)
	if final.Status != models.StatusRejected {
		t.Errorf("status = %q, want REJECTED", final.Status)
	}
	if final.Notes != "out of stock" {
		t.Errorf("notes = %q, want %q", final.Notes, "out of stock")
	}
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))

	cancelled, err := svc.CancelDonation(context.Background(), created.DonationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %q, want CANCELLED", cancelled.Status)
	}
}

func TestCancelRequiresAvailable(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.Reserve(context.Background(), created.DonationID, "ORG-B")

	_, err := svc.CancelDonation(context.Background(), created.DonationID)
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError cancelling a RESERVED donation, got %v", err)
	}
}

func TestUpdateDonation(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))

	newType := "Fruit"
	newQty := models.Quantity{Unit: "boxes", Value: 4}
	updated, err := svc.UpdateDonation(context.Background(), created.DonationID, models.DonationPatch{
		FoodType: &newType,
		Quantity: &newQty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FoodType != "Fruit" {
		t.Errorf("foodType = %q, want Fruit", updated.FoodType)
	}
	if updated.Quantity != newQty {
		t.Errorf("quantity = %+v, want %+v", updated.Quantity, newQty)
	}
	// Untouched fields and status survive.
	if updated.DonorName != created.DonorName {
		t.Errorf("donorName changed to %q", updated.DonorName)
	}
	if updated.Status != models.StatusAvailable {
		t.Errorf("update changed status to %q", updated.Status)
	}

	_, err = svc.UpdateDonation(context.Background(), "DN-MISSING", models.DonationPatch{FoodType: &newType})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverrideStatusBypassesGuards(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.CancelDonation(context.Background(), created.DonationID)

	// CANCELLED is terminal for every guarded transition, but the override
	// is unconditional.
	updated, err := svc.OverrideStatus(context.Background(), created.DonationID, models.StatusAvailable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.StatusAvailable {
		t.Errorf("status = %q, want AVAILABLE", updated.Status)
	}
}

func TestDeleteFromAnyStatus(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.Reserve(context.Background(), created.DonationID, "ORG-B")

	if err := svc.DeleteDonation(context.Background(), created.DonationID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetDonationByID(context.Background(), created.DonationID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListAvailableExcluding(t *testing.T) {
	svc, _ := newTestService()
	svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	theirs, _ := svc.CreateDonation(context.Background(), validDonation("ORG-B"))
	reservedElsewhere, _ := svc.CreateDonation(context.Background(), validDonation("ORG-C"))
	svc.Reserve(context.Background(), reservedElsewhere.DonationID, "ORG-B")

	feed, err := svc.ListAvailableExcluding(context.Background(), "ORG-A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("feed has %d donations, want 1", len(feed))
	}
	if feed[0].DonationID != theirs.DonationID {
		t.Errorf("feed contains %q, want %q", feed[0].DonationID, theirs.DonationID)
	}
}

func TestListExpiringAndExpired(t *testing.T) {
	svc, _ := newTestService()

	soon := validDonation("ORG-A")
	soon.ExpiryDate = testNow.Add(24 * time.Hour)
	svc.CreateDonation(context.Background(), soon)

	later := validDonation("ORG-A")
	later.ExpiryDate = testNow.Add(10 * 24 * time.Hour)
	svc.CreateDonation(context.Background(), later)

	overdue := validDonation("ORG-B")
	overdue.ExpiryDate = testNow.Add(-time.Hour)
	overdueCreated, _ := svc.CreateDonation(context.Background(), overdue)

	expiring, err := svc.ListExpiring(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expiring) != 2 {
		t.Fatalf("expiring has %d donations, want 2 (soon + overdue)", len(expiring))
	}

	expired, err := svc.ListExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expired) != 1 || expired[0].DonationID != overdueCreated.DonationID {
		t.Fatalf("expired = %+v, want only %q", expired, overdueCreated.DonationID)
	}
}

func TestRequestLedgerAndNotification(t *testing.T) {
	svc, _ := newTestService()
	created, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.Reserve(context.Background(), created.DonationID, "ORG-B")

	pending, err := svc.ListPendingRequests(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 || pending[0].Status != models.RequestPending {
		t.Fatalf("pending ledger = %+v, want one PENDING entry", pending)
	}

	_, entry, err := svc.Decide(context.Background(), created.DonationID, "admin1", OutcomeReject, "spoiled")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	mine, _ := svc.ListRequestsByOrganization(context.Background(), "ORG-B")
	if len(mine) != 1 || mine[0].Status != models.RequestRejected || mine[0].NotificationShown {
		t.Fatalf("requester ledger = %+v, want one unshown REJECTED entry", mine)
	}

	shown, err := svc.MarkNotificationShown(context.Background(), entry.RequestID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shown.NotificationShown {
		t.Error("notificationShown still false after acknowledgement")
	}

	if _, err := svc.MarkNotificationShown(context.Background(), "RQ-MISSING"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPendingReservations(t *testing.T) {
	svc, _ := newTestService()
	first, _ := svc.CreateDonation(context.Background(), validDonation("ORG-A"))
	svc.CreateDonation(context.Background(), validDonation("ORG-B"))
	svc.Reserve(context.Background(), first.DonationID, "ORG-B")

	inbox, err := svc.ListPendingReservations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox) != 1 || inbox[0].DonationID != first.DonationID {
		t.Fatalf("inbox = %+v, want only the reserved donation", inbox)
	}
}
