package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// maxGenerateAttempts bounds the reference/token collision-retry loops.
// With a 36^10 reference space the loop practically never retries; the
// bound just turns a broken random source into an error instead of a
// spin.
const maxGenerateAttempts = 10

// BookingService implements booking creation, administrative updates,
// self-service cancellation and the user-purge cascade.  Every mutating
// operation is one transaction: either all of its ledger writes, booking
// writes and link issuance commit, or none do.
type BookingService struct {
	run      database.Runner
	ledger   Ledger
	bookings BookingStore
	links    LinkStore
	rooms    RoomStore
	users    UserStore
	notify   Notifier
	cfg      Config
	now      func() time.Time
}

// NewBookingService constructs a BookingService.  All dependencies must
// be non-nil.
func NewBookingService(run database.Runner, ledger Ledger, bookings BookingStore, links LinkStore, rooms RoomStore, users UserStore, notify Notifier, cfg Config) *BookingService {
	if run == nil || ledger == nil || bookings == nil || links == nil || rooms == nil || users == nil || notify == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		run:      run,
		ledger:   ledger,
		bookings: bookings,
		links:    links,
		rooms:    rooms,
		users:    users,
		notify:   notify,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CreateBookingResult is returned to the caller of CreateBooking.
type CreateBookingResult struct {
	Booking    *model.Booking
	PaymentURL string
}

// CreateBooking reserves the nights [checkIn, checkOut) of a room for a
// user, freezing the room's current nightly price, and issues a payment
// link.  The availability check and the reservation run in one
// SERIALIZABLE transaction together with the booking and link inserts;
// a losing concurrent request fails with *repository.ConflictError and
// leaves nothing behind.
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID uint64, checkIn, checkOut time.Time, guests []model.Guest) (*CreateBookingResult, error) {
	now := s.now()
	today := model.DateOnly(now)
	checkIn = model.DateOnly(checkIn)
	checkOut = model.DateOnly(checkOut)

	if checkIn.Before(today) {
		return nil, invalidState("check-in date cannot be before today")
	}
	if !checkOut.After(checkIn) {
		return nil, invalidState("check-out date must be after check-in date")
	}
	if checkOut.After(today.Add(s.cfg.MaxAdvance)) {
		return nil, invalidState("cannot book more than %d days in advance", int(s.cfg.MaxAdvance.Hours()/24))
	}
	if nights := model.NightsBetween(checkIn, checkOut); nights > s.cfg.MaxStayNights {
		return nil, invalidState("maximum stay is %d nights", s.cfg.MaxStayNights)
	}

	pending, err := s.bookings.CountPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending >= s.cfg.PendingBookingCap {
		return nil, invalidState("too many pending bookings; complete or cancel them first")
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(guests) > room.Capacity {
		return nil, invalidState("number of guests (%d) exceeds room capacity (%d)", len(guests), room.Capacity)
	}

	// Price is frozen here; later room price changes never touch this
	// booking.
	pricePerNight := room.PricePerNightCents
	total := model.TotalPriceCents(pricePerNight, checkIn, checkOut)
	if total <= 0 {
		return nil, invalidState("invalid booking price")
	}

	reference, err := s.uniqueReference(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.uniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		Reference:          reference,
		RoomID:             roomID,
		UserID:             userID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		PricePerNightCents: pricePerNight,
		TotalCents:         total,
		Status:             model.StatusBooked,
		PaymentStatus:      model.PaymentPending,
		CreatedAt:          now.UTC(),
		Guests:             guests,
	}

	err = s.run.InSerializableTx(ctx, func(tx *sql.Tx) error {
		available, err := s.ledger.IsAvailableTx(ctx, tx, roomID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if !available {
			return invalidState("room is not available for the selected date range")
		}
		if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
			return err
		}
		if err := s.bookings.AddGuestsTx(ctx, tx, booking.ID, guests); err != nil {
			return err
		}
		// A conflict here aborts the whole transaction, including the
		// booking row created above.
		if err := s.ledger.ReserveTx(ctx, tx, roomID, booking.ID, checkIn, checkOut); err != nil {
			return err
		}
		return s.links.CreateTx(ctx, tx, &model.PaymentLink{
			Token:     token,
			BookingID: booking.ID,
			ExpiresAt: now.Add(s.cfg.PaymentLinkTTL).UTC(),
			CreatedAt: now.UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	paymentURL := fmt.Sprintf("%s?token=%s", s.cfg.PaymentURLBase, token)
	s.notifyCreated(ctx, booking, paymentURL)

	return &CreateBookingResult{Booking: booking, PaymentURL: paymentURL}, nil
}

// UpdateBooking applies an administrative status change, enforcing the
// state machine's transition guards.  Either field may be nil to leave
// it untouched.  Transitions that cancel or check out the booking
// release its ledger hold in the same transaction.
func (s *BookingService) UpdateBooking(ctx context.Context, id uint64, newStatus *model.BookingStatus, newPayment *model.PaymentStatus) error {
	today := model.DateOnly(s.now())
	return s.run.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		released := b.Status == model.StatusCancelled

		if newStatus != nil {
			switch {
			case b.Status == model.StatusCancelled:
				return invalidState("cannot update a cancelled booking")
			case *newStatus == model.StatusCancelled && b.Status == model.StatusCheckedIn:
				return invalidState("cannot cancel a booking that is checked in")
			case *newStatus == model.StatusCheckedIn && today.Before(b.CheckIn):
				return invalidState("cannot check in before the check-in date")
			case *newStatus == model.StatusCheckedIn && b.PaymentStatus != model.PaymentPaid:
				return invalidState("cannot check in without payment")
			case *newStatus == model.StatusCheckedOut && b.Status != model.StatusCheckedIn:
				return invalidState("must be checked in before checking out")
			case *newStatus == model.StatusCancelled && !today.Before(b.CheckIn):
				return invalidState("cannot cancel after the check-in date has passed")
			case !model.ValidBookingTransition(b.Status, *newStatus):
				return invalidState("illegal booking status transition %s -> %s", b.Status, *newStatus)
			}
			if *newStatus == model.StatusCancelled {
				if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
					return err
				}
				released = true
			}
			// Checking out frees the remaining nights, so an early
			// departure's tail is bookable again right away.
			if *newStatus == model.StatusCheckedOut {
				if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
					return err
				}
				released = true
			}
			b.Status = *newStatus
		}

		if newPayment != nil {
			switch {
			case b.PaymentStatus == model.PaymentPaid && *newPayment != model.PaymentRefunded:
				return invalidState("cannot change payment status from PAID except to REFUNDED")
			case *newPayment == model.PaymentRefunded && b.PaymentStatus != model.PaymentPaid:
				return invalidState("cannot refund a payment that has not been made")
			case !model.ValidPaymentTransition(b.PaymentStatus, *newPayment):
				return invalidState("illegal payment status transition %s -> %s", b.PaymentStatus, *newPayment)
			}
			// Cancelling or refunding the payment forces the booking
			// itself to CANCELLED and frees the nights.
			if *newPayment == model.PaymentCancelled || *newPayment == model.PaymentRefunded {
				b.Status = model.StatusCancelled
				if !released {
					if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
						return err
					}
					released = true
				}
			}
			b.PaymentStatus = *newPayment
		}

		return s.bookings.UpdateStatusTx(ctx, tx, b.ID, b.Status, b.PaymentStatus)
	})
}

// CancelBooking is the guest-facing cancellation.  It enforces the
// cancellation window, releases the ledger hold and flips the payment
// status to REFUNDED when the booking was paid, CANCELLED otherwise.
func (s *BookingService) CancelBooking(ctx context.Context, reference string, userID uint64) error {
	now := s.now()
	today := model.DateOnly(now)
	var cancelled *model.Booking
	err := s.run.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetByReferenceForUpdateTx(ctx, tx, reference)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			// Do not reveal other users' bookings.
			return repository.ErrBookingNotFound
		}
		switch {
		case b.Status == model.StatusCancelled:
			return invalidState("booking already cancelled")
		case b.Status == model.StatusCheckedIn:
			return invalidState("cannot cancel a booking that has already been checked in")
		case b.CheckIn.Before(today):
			return invalidState("cannot cancel a booking after the check-in date has passed")
		case !today.Before(b.CheckIn) && today.Before(b.CheckOut):
			return invalidState("cannot cancel a booking during the stay")
		case now.Add(s.cfg.CancelCutoff).After(b.CheckIn):
			return invalidState("cancellation must be made at least %d hours before check-in", int(s.cfg.CancelCutoff.Hours()))
		}
		if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
			return err
		}
		b.Status = model.StatusCancelled
		if b.PaymentStatus == model.PaymentPaid {
			b.PaymentStatus = model.PaymentRefunded
		} else {
			b.PaymentStatus = model.PaymentCancelled
		}
		if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, b.Status, b.PaymentStatus); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return err
	}
	s.notifyCancelled(ctx, cancelled)
	return nil
}

// FindByReference returns a booking by its public reference.  Non-admin
// callers only see their own bookings; anything else reads as not found.
func (s *BookingService) FindByReference(ctx context.Context, reference string, userID uint64, admin bool) (*model.Booking, error) {
	b, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !admin && b.UserID != userID {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}

// ListUserBookings returns the caller's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListAllBookings returns every booking, newest first.  Administrative
// use only; the handler gates it behind the ADMIN role.
func (s *BookingService) ListAllBookings(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.ListAll(ctx)
}

// PurgeUserData removes a user's bookings and guests and releases any
// live ledger holds.  It is the explicit cascade invoked by the
// user-lifecycle collaborator when an account is erased, and the only
// path that hard-deletes bookings.  Returns the number of bookings
// removed.
func (s *BookingService) PurgeUserData(ctx context.Context, userID uint64) (int64, error) {
	active, err := s.bookings.ActiveByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	var removed int64
	err = s.run.InTx(ctx, func(tx *sql.Tx) error {
		for _, b := range active {
			if err := s.ledger.ReleaseTx(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut); err != nil {
				return err
			}
		}
		n, err := s.bookings.DeleteByUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	return removed, err
}

// uniqueReference generates a booking reference, retrying on collision.
func (s *BookingService) uniqueReference(ctx context.Context) (string, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		ref, err := utils.BookingReference()
		if err != nil {
			return "", err
		}
		exists, err := s.bookings.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errors.New("could not generate a unique booking reference")
}

// uniqueToken generates a payment link token, retrying on collision.
func (s *BookingService) uniqueToken(ctx context.Context) (string, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		token, err := utils.PaymentToken()
		if err != nil {
			return "", err
		}
		exists, err := s.links.TokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	return "", errors.New("could not generate a unique payment token")
}

// notifyCreated publishes the booking-created notification.  Failures
// are logged and swallowed: the booking has already committed.
func (s *BookingService) notifyCreated(ctx context.Context, b *model.Booking, paymentURL string) {
	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		log.Printf("booking %s: lookup user %d for notification failed: %v", b.Reference, b.UserID, err)
		return
	}
	if err := s.notify.BookingCreated(ctx, b, user.Email, paymentURL); err != nil {
		log.Printf("booking %s: creation notification failed: %v", b.Reference, err)
	}
}

func (s *BookingService) notifyCancelled(ctx context.Context, b *model.Booking) {
	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		log.Printf("booking %s: lookup user %d for notification failed: %v", b.Reference, b.UserID, err)
		return
	}
	if err := s.notify.BookingCancelled(ctx, b, user.Email); err != nil {
		log.Printf("booking %s: cancellation notification failed: %v", b.Reference, err)
	}
}
