package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Sweeper periodically reclaims ledger holds from abandoned bookings:
// anything still PENDING past the expiry cutoff is cancelled and its
// nights freed.  Semantics are at-least-once — a booking missed by one
// run (or whose transaction failed) is simply caught by the next.
type Sweeper struct {
	run      database.Runner
	bookings BookingStore
	ledger   Ledger
	cutoff   time.Duration // age after which a PENDING booking is reclaimed
	interval time.Duration // period between runs
	now      func() time.Time
}

// NewSweeper constructs a Sweeper.  All dependencies must be non-nil.
func NewSweeper(run database.Runner, bookings BookingStore, ledger Ledger, cfg Config) *Sweeper {
	if run == nil || bookings == nil || ledger == nil {
		panic("nil dependency passed to NewSweeper")
	}
	return &Sweeper{
		run:      run,
		bookings: bookings,
		ledger:   ledger,
		cutoff:   cfg.PendingExpiry,
		interval: cfg.SweepInterval,
		now:      time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled.  A failing run is
// logged and never crashes the loop; the next tick proceeds normally.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("sweeper: running every %s, reclaiming PENDING bookings older than %s", s.interval, s.cutoff)
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if n, err := s.RunOnce(ctx); err != nil {
				log.Printf("sweeper: run failed: %v", err)
			} else if n > 0 {
				log.Printf("sweeper: auto-cancelled %d expired pending bookings", n)
			}
		}
	}
}

// RunOnce performs a single sweep and returns how many bookings were
// cancelled.  Each booking is released and cancelled in its own
// transaction so one failure cannot block the rest of the batch.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cutoff)
	expired, err := s.bookings.FindExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, b := range expired {
		if err := s.reclaim(ctx, b.ID); err != nil {
			log.Printf("sweeper: reclaim booking %s failed: %v", b.Reference, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// reclaim releases one booking's hold and cancels it atomically.  The
// row is re-read under lock because a payment or cancellation may have
// settled it between the scan and this transaction.
func (s *Sweeper) reclaim(ctx context.Context, bookingID uint64) error {
	return s.run.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus != model.PaymentPending {
			return nil
		}
		if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
			return err
		}
		return s.bookings.UpdateStatusTx(ctx, tx, b.ID, model.StatusCancelled, model.PaymentCancelled)
	})
}
