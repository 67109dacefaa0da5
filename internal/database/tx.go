package database

import (
	"context"
	"database/sql"
)

// Runner abstracts the transaction boundary of an engine operation.  Every
// state-mutating operation runs inside exactly one transaction obtained
// from a Runner; tests substitute an in-memory implementation.
type Runner interface {
	// InTx runs fn inside a read-committed transaction, committing on
	// nil and rolling back on error.
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	// InSerializableTx is like InTx but at SERIALIZABLE isolation.  The
	// availability check plus reserve sequence must run here so that two
	// concurrent bookings for overlapping nights cannot both commit.
	InSerializableTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// TxRunner is the production Runner backed by *sql.DB.
type TxRunner struct{ DB *sql.DB }

// NewTxRunner returns a Runner bound to the given database handle.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{DB: db} }

func (r *TxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.run(ctx, nil, fn)
}

func (r *TxRunner) InSerializableTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// run opens a transaction, invokes fn and commits unless fn failed.  The
// rollback in the deferred function is a no-op after a successful commit.
func (r *TxRunner) run(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
