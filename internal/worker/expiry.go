// Package worker contains background jobs that run for the lifetime of
// the server.
package worker

import (
	"context"
	"log"
	"time"
)

// ReservationStore is the slice of the ticket repository the sweeper
// needs.
type ReservationStore interface {
	CancelExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpirySweeper cancels reservations that were never paid for.  Every
// interval it cancels BOOKED tickets older than the grace window,
// returning their seats to the pool.
type ExpirySweeper struct {
	Store    ReservationStore
	Grace    time.Duration
	Interval time.Duration
}

func NewExpirySweeper(store ReservationStore, grace, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{Store: store, Grace: grace, Interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.  A
// failed sweep is logged and retried on the next tick.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := s.SweepOnce(ctx, now.UTC()); err != nil {
				log.Printf("expiry-sweeper: sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce cancels reservations created before now minus the grace
// window.
func (s *ExpirySweeper) SweepOnce(ctx context.Context, now time.Time) error {
	n, err := s.Store.CancelExpired(ctx, now.Add(-s.Grace))
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("expiry-sweeper: cancelled %d expired reservations", n)
	}
	return nil
}
