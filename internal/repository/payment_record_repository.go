package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// PaymentRecordRepo provides data access to the payments audit log.
// Records are immutable: the repository supports inserts and reads only,
// never updates or deletes.  The unique transaction_id column is what
// makes gateway result application idempotent across webhook retries.
type PaymentRecordRepo struct {
	db *sql.DB
}

// NewPaymentRecordRepo returns a new PaymentRecordRepo bound to the provided database.
func NewPaymentRecordRepo(db *sql.DB) *PaymentRecordRepo { return &PaymentRecordRepo{db: db} }

// CreateTx appends an audit record within the caller's transaction so
// the record and the booking's payment-status change commit together.
func (r *PaymentRecordRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.PaymentRecord) error {
	const q = `INSERT INTO payments
        (gateway, booking_reference, transaction_id, amount_cents, status, failure_reason, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rec.Gateway, rec.BookingReference,
		rec.TransactionID, rec.AmountCents, rec.Status, rec.FailureReason,
		rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// TransactionExistsTx reports whether a gateway transaction id has
// already been recorded.  It runs inside the reconciliation transaction
// so the duplicate check and the insert cannot interleave with another
// delivery of the same capture.
func (r *PaymentRecordRepo) TransactionExistsTx(ctx context.Context, tx *sql.Tx, transactionID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE transaction_id = ?`, transactionID).Scan(&n)
	return n > 0, err
}

// ListByBookingReference returns the audit trail for a booking, oldest
// first.
func (r *PaymentRecordRepo) ListByBookingReference(ctx context.Context, ref string) ([]*model.PaymentRecord, error) {
	const q = `SELECT id, gateway, booking_reference, transaction_id, amount_cents, status, failure_reason, created_at
               FROM payments WHERE booking_reference = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.PaymentRecord
	for rows.Next() {
		var rec model.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.Gateway, &rec.BookingReference, &rec.TransactionID,
			&rec.AmountCents, &rec.Status, &rec.FailureReason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
