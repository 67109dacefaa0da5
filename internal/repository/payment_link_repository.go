package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// PaymentLinkRepo provides data access to the payment_links table.  A
// link binds one high-entropy token to one booking with an absolute
// expiry.  Tokens are checked, never consumed destructively, so the
// repository only ever inserts and reads.
type PaymentLinkRepo struct {
	db *sql.DB
}

// NewPaymentLinkRepo returns a new PaymentLinkRepo bound to the provided database.
func NewPaymentLinkRepo(db *sql.DB) *PaymentLinkRepo { return &PaymentLinkRepo{db: db} }

// CreateTx inserts a payment link within the caller's transaction so the
// link is issued atomically with its booking.
func (r *PaymentLinkRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.PaymentLink) error {
	const q = `INSERT INTO payment_links (token, booking_id, expires_at, created_at)
               VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, l.Token, l.BookingID,
		l.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
		l.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// TokenExists reports whether a token is already stored.  Issuance
// retries generation until this returns false.
func (r *PaymentLinkRepo) TokenExists(ctx context.Context, token string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_links WHERE token = ?`, token).Scan(&n)
	return n > 0, err
}

// GetByToken loads a link by its token.  Returns ErrLinkNotFound for
// unknown tokens.
func (r *PaymentLinkRepo) GetByToken(ctx context.Context, token string) (*model.PaymentLink, error) {
	const q = `SELECT id, token, booking_id, expires_at, created_at
               FROM payment_links WHERE token = ?`
	var l model.PaymentLink
	err := r.db.QueryRowContext(ctx, q, token).Scan(&l.ID, &l.Token, &l.BookingID, &l.ExpiresAt, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
