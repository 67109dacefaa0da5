package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their guests.
// Bookings are the engine's central entity; they are never hard-deleted
// through normal operation, only moved to CANCELLED.  Guests are owned
// by their booking and stored in the guests table.  All timestamp
// fields are assumed to be stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for starting transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, booking_reference, room_id, user_id, check_in, check_out,
       price_per_night_cents, total_cents, booking_status, payment_status, created_at`

// scanBooking reads one booking row from any row scanner.
func scanBooking(scan func(dest ...interface{}) error) (*model.Booking, error) {
	var b model.Booking
	err := scan(&b.ID, &b.Reference, &b.RoomID, &b.UserID, &b.CheckIn, &b.CheckOut,
		&b.PricePerNightCents, &b.TotalCents, &b.Status, &b.PaymentStatus, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the provided model.  The
// caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
        (booking_reference, room_id, user_id, check_in, check_out,
         price_per_night_cents, total_cents, booking_status, payment_status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.Reference, b.RoomID, b.UserID, dateArg(b.CheckIn), dateArg(b.CheckOut),
		b.PricePerNightCents, b.TotalCents, b.Status, b.PaymentStatus,
		b.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// AddGuestsTx inserts the guests of a booking in a single batch
// statement.  Passing an empty slice has no effect and returns nil.
func (r *BookingRepo) AddGuestsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, guests []model.Guest) error {
	if len(guests) == 0 {
		return nil
	}
	query := `INSERT INTO guests (booking_id, first_name, last_name, email, phone_number, identity_number) VALUES `
	args := make([]interface{}, 0, len(guests)*6)
	for i, g := range guests {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, bookingID, g.FirstName, g.LastName, g.Email, g.PhoneNumber, g.IdentityNumber)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID loads a booking by id without locking.  Returns
// ErrBookingNotFound when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetByIDForUpdateTx loads a booking by id and locks its row so that
// concurrent status mutations of the same booking serialize against each
// other.  Returns ErrBookingNotFound when no row exists.
func (r *BookingRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetByReferenceForUpdateTx is like GetByIDForUpdateTx but keyed by the
// public booking reference.
func (r *BookingRepo) GetByReferenceForUpdateTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, ref).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetByReference loads a booking by its public reference without
// locking, together with its guests.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, ref).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	guests, err := r.guestsByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Guests = guests
	return b, nil
}

// ReferenceExists reports whether a booking reference is already taken.
// Creation retries generation until this returns false.
func (r *BookingRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE booking_reference = ?`, ref).Scan(&n)
	return n > 0, err
}

// CountPendingByUser counts a user's bookings still awaiting payment.
// Used by the anti-spam throttle at creation time.
func (r *BookingRepo) CountPendingByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = ? AND payment_status = ?`,
		userID, model.PaymentPending).Scan(&n)
	return n, err
}

// UpdateStatusTx persists a booking's status pair within the caller's
// transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, bs model.BookingStatus, ps model.PaymentStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET booking_status = ?, payment_status = ? WHERE id = ?`,
		bs, ps, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// FindExpiredPending returns bookings still PENDING whose creation time
// is older than the cutoff.  The sweeper cancels these and releases
// their ledger holds.
func (r *BookingRepo) FindExpiredPending(ctx context.Context, cutoff time.Time) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE payment_status = ? AND created_at < ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, model.PaymentPending,
		cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListAll returns every booking, newest first.  Administrative use only.
func (r *BookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// DeleteByUserTx removes a user's bookings together with their guests.
// This is the explicit cascade invoked by the user-lifecycle collaborator
// when an account is erased; normal operation never deletes bookings.
// Callers must release any live ledger holds before invoking it.
func (r *BookingRepo) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guests WHERE booking_id IN (SELECT id FROM bookings WHERE user_id = ?)`,
		userID); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ActiveByUser returns a user's bookings whose ledger holds are still
// live (BOOKED or CHECKED_IN).  Used by the purge cascade to know which
// ranges to release.
func (r *BookingRepo) ActiveByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE user_id = ? AND booking_status IN (?, ?)`
	rows, err := r.db.QueryContext(ctx, q, userID, model.StatusBooked, model.StatusCheckedIn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]*model.Booking, error) {
	var out []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingRepo) guestsByBooking(ctx context.Context, bookingID uint64) ([]model.Guest, error) {
	const q = `SELECT id, booking_id, first_name, last_name, email, phone_number, identity_number
               FROM guests WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Guest
	for rows.Next() {
		var g model.Guest
		if err := rows.Scan(&g.ID, &g.BookingID, &g.FirstName, &g.LastName, &g.Email, &g.PhoneNumber, &g.IdentityNumber); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
