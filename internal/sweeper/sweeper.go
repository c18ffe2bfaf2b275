package sweeper

import (
	"context"
	"log"
	"time"

	"food-redistribution-api-server/internal/donation"
)

// Sweeper periodically forces every donation past its expiry date into
// EXPIRED, whatever its current status. It races freely with request-driven
// transitions: MarkExpired is conditional on "not already EXPIRED", so
// re-sweeping is a no-op and a reservation that lands just before a sweep is
// simply overridden on the next pass.
type Sweeper struct {
	Service  *donation.Service
	Interval time.Duration
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.SweepOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires every overdue donation. A failure on one record is
// logged and does not abort the rest of the pass. Returns the number of
// donations expired.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	expired, err := s.Service.ListExpired(ctx)
	if err != nil {
		log.Printf("Expiry sweep failed to list overdue donations: %v", err)
		return 0
	}

	swept := 0
	for _, d := range expired {
		if err := s.Service.Store.MarkExpired(ctx, d.DonationID); err != nil {
			log.Printf("Expiry sweep failed to expire donation %s: %v", d.DonationID, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Printf("Expiry sweep marked %d donation(s) as EXPIRED", swept)
	}
	return swept
}
