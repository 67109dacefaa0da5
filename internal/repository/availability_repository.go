package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// AvailabilityRepo is the inventory ledger: one row per (room, night).
// Rows are created lazily on first reservation and carry a back-reference
// to the booking holding them.  All range arguments are half-open
// [start, end) DATE values normalized to midnight UTC.
//
// IsAvailableTx and ReserveTx must be called inside the same transaction
// (SERIALIZABLE for booking creation) so that two concurrent requests for
// overlapping nights cannot both observe "available" and both commit.
// ReserveTx locks existing rows FOR UPDATE in date-ascending order; the
// canonical ordering prevents two overlapping ranges from locking in
// opposite order and deadlocking.  A unique key on (room_id, date) makes
// concurrent inserts of the same missing night collide at commit.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns an AvailabilityRepo bound to the given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// DB exposes the underlying handle for starting transactions.
func (r *AvailabilityRepo) DB() *sql.DB { return r.db }

// IsAvailableTx reports whether no night in [start, end) is booked for
// the room.  It must run inside the caller's transaction.
func (r *AvailabilityRepo) IsAvailableTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM room_availability
               WHERE room_id = ? AND date >= ? AND date < ? AND booked = 1`
	var n int
	if err := tx.QueryRowContext(ctx, q, roomID, dateArg(start), dateArg(end)).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// BookedDays returns the booked ledger rows for the room in [start, end),
// date-ascending.  An empty result means every night in the range is free.
// It is the read-only variant used by the public availability endpoint and
// runs outside any transaction; callers needing the race-free guarantee
// must use IsAvailableTx inside a reserve transaction.
func (r *AvailabilityRepo) BookedDays(ctx context.Context, roomID uint64, start, end time.Time) ([]model.AvailabilityDay, error) {
	const q = `SELECT id, room_id, date, booked, booking_id FROM room_availability
               WHERE room_id = ? AND date >= ? AND date < ? AND booked = 1
               ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, roomID, dateArg(start), dateArg(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var days []model.AvailabilityDay
	for rows.Next() {
		var d model.AvailabilityDay
		if err := rows.Scan(&d.ID, &d.RoomID, &d.Date, &d.Booked, &d.BookingID); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ReserveTx marks every night in [start, end) as booked by bookingID.
// Existing rows in the range are locked FOR UPDATE in date-ascending
// order before being inspected.  If any night is already booked the whole
// operation fails with a *ConflictError naming the first conflicting date
// in chronological order, and nothing is written.  Missing rows are
// created in one batch insert.
func (r *AvailabilityRepo) ReserveTx(ctx context.Context, tx *sql.Tx, roomID, bookingID uint64, start, end time.Time) error {
	const lockQ = `SELECT id, date, booked FROM room_availability
                   WHERE room_id = ? AND date >= ? AND date < ?
                   ORDER BY date FOR UPDATE`
	rows, err := tx.QueryContext(ctx, lockQ, roomID, dateArg(start), dateArg(end))
	if err != nil {
		return err
	}
	existing := make(map[string]uint64) // date -> row id, unbooked rows only
	for rows.Next() {
		var row model.AvailabilityDay
		if scanErr := rows.Scan(&row.ID, &row.Date, &row.Booked); scanErr != nil {
			rows.Close()
			return scanErr
		}
		if row.Booked {
			rows.Close()
			// Rows arrive date-ascending, so the first booked row is the
			// first conflict in chronological order.
			return &ConflictError{RoomID: roomID, Date: model.DateOnly(row.Date)}
		}
		existing[model.DateOnly(row.Date).Format("2006-01-02")] = row.ID
	}
	if err := rows.Close(); err != nil {
		return err
	}

	var (
		updateIDs []uint64
		inserts   []time.Time
	)
	for day := model.DateOnly(start); day.Before(model.DateOnly(end)); day = day.AddDate(0, 0, 1) {
		if id, ok := existing[day.Format("2006-01-02")]; ok {
			updateIDs = append(updateIDs, id)
		} else {
			inserts = append(inserts, day)
		}
	}

	for _, id := range updateIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE room_availability SET booked = 1, booking_id = ? WHERE id = ?`,
			bookingID, id); err != nil {
			return err
		}
	}
	if len(inserts) > 0 {
		query := `INSERT INTO room_availability (room_id, date, booked, booking_id) VALUES `
		args := make([]interface{}, 0, len(inserts)*4)
		for i, day := range inserts {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, 1, ?)"
			args = append(args, roomID, dateArg(day), bookingID)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseTx frees every night in [start, end) for the room and clears the
// booking back-reference.  Missing rows are treated as already available,
// so a release never fails for them.  Freed rows are then deleted to keep
// the table small; the deletion is housekeeping, not an invariant.
func (r *AvailabilityRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE room_availability SET booked = 0, booking_id = NULL
         WHERE room_id = ? AND date >= ? AND date < ?`,
		roomID, dateArg(start), dateArg(end)); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM room_availability
         WHERE room_id = ? AND date >= ? AND date < ? AND booked = 0`,
		roomID, dateArg(start), dateArg(end))
	return err
}

// dateArg formats a normalized date for a MySQL DATE column.
func dateArg(t time.Time) string {
	return model.DateOnly(t).Format("2006-01-02")
}
