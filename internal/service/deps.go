package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// The interfaces below are the engine's view of its collaborators.  The
// production implementations live in internal/repository and
// internal/queue; tests substitute in-memory fakes.  Methods with a Tx
// suffix run inside the transaction owned by the calling operation.

// Ledger is the per-room-per-night availability inventory.
type Ledger interface {
	IsAvailableTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) (bool, error)
	ReserveTx(ctx context.Context, tx *sql.Tx, roomID, bookingID uint64, start, end time.Time) error
	ReleaseTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) error
}

// BookingStore persists bookings and their guests.
type BookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	AddGuestsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, guests []model.Guest) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error)
	GetByReferenceForUpdateTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Booking, error)
	GetByReference(ctx context.Context, ref string) (*model.Booking, error)
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	CountPendingByUser(ctx context.Context, userID uint64) (int, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, bs model.BookingStatus, ps model.PaymentStatus) error
	FindExpiredPending(ctx context.Context, cutoff time.Time) ([]*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error)
	ListAll(ctx context.Context) ([]*model.Booking, error)
	ActiveByUser(ctx context.Context, userID uint64) ([]*model.Booking, error)
	DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (int64, error)
}

// LinkStore persists payment links.
type LinkStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, l *model.PaymentLink) error
	TokenExists(ctx context.Context, token string) (bool, error)
	GetByToken(ctx context.Context, token string) (*model.PaymentLink, error)
}

// PaymentStore appends to the immutable payment audit log.
type PaymentStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, rec *model.PaymentRecord) error
	TransactionExistsTx(ctx context.Context, tx *sql.Tx, transactionID string) (bool, error)
}

// RoomStore reads rooms owned by the inventory collaborator.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// UserStore reads users owned by the identity collaborator.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// Notifier delivers user-facing notifications.  Delivery is
// fire-and-forget: callers log a returned error and carry on, a failed
// notification never fails the operation that triggered it.
type Notifier interface {
	BookingCreated(ctx context.Context, b *model.Booking, email, paymentURL string) error
	BookingCancelled(ctx context.Context, b *model.Booking, email string) error
	PaymentResult(ctx context.Context, b *model.Booking, email string, succeeded bool, reason string) error
}

// Config carries the externally tunable constants of the engine.  The
// values are business defaults, not invariants; internal/config loads
// overrides from the environment.
type Config struct {
	PendingBookingCap int           // max PENDING bookings per user
	MaxAdvance        time.Duration // how far ahead check-out may lie
	MaxStayNights     int           // longest allowed stay
	PaymentLinkTTL    time.Duration // payment link lifetime
	PendingExpiry     time.Duration // age after which PENDING bookings are reclaimed
	SweepInterval     time.Duration // sweeper period
	CancelCutoff      time.Duration // minimum notice before check-in for self-service cancel
	PaymentURLBase    string        // frontend payment page, token appended as query param
}

// DefaultConfig mirrors the reference deployment's tuning.
func DefaultConfig() Config {
	return Config{
		PendingBookingCap: 3,
		MaxAdvance:        365 * 24 * time.Hour,
		MaxStayNights:     30,
		PaymentLinkTTL:    10 * time.Minute,
		PendingExpiry:     30 * time.Minute,
		SweepInterval:     10 * time.Minute,
		CancelCutoff:      24 * time.Hour,
		PaymentURLBase:    "http://localhost:4200/payment",
	}
}
