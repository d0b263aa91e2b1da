// Package dbx holds the small database plumbing shared by the profiles and
// usernames repositories: DBTX, which lets a query run against either a plain
// connection or a transaction, and WithTx for the operations that need one
// (the username claim spans a lock, a release and two writes).
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql the repositories depend on. Both *sql.DB
// and *sql.Tx satisfy it, so the same query helpers work inside and outside
// WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with the transactional handle, and
// commits on success or rolls back on error. Panics roll back and are
// rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx,
//	        `UPDATE profiles SET username = $2 WHERE user_id = $1`, userID, username)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
