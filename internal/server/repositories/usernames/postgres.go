// Package usernames contains the PostgreSQL-backed username registry: a
// global uniqueness index plus the transactional claim operation.
package usernames

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository needs a full *sql.DB (not just DBTX) because Claim
// opens its own transaction.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Owner(ctx context.Context, key string) (string, error) {
	query :=
		`SELECT user_id FROM usernames
		 WHERE username_key = $1
		 `

	var userID string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return userID, nil
}

func (r *PostgresRepository) LastChangeAt(ctx context.Context, userID string) (int64, error) {
	query :=
		`SELECT updated_at FROM usernames
		 WHERE user_id = $1
		 `

	var updatedAt int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&updatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return updatedAt, nil
}

func (r *PostgresRepository) Claim(ctx context.Context, userID, key, username string, now int64) (*Claim, error) {

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		var owner string
		err := tx.QueryRowContext(ctx,
			`SELECT user_id FROM usernames WHERE username_key = $1 FOR UPDATE`, key).Scan(&owner)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// unclaimed, fall through
		case err != nil:
			return fmt.Errorf("db error: %w", err)
		case owner != userID:
			return common.ErrorUsernameTaken
		}

		// Release whatever this user held before; a same-key re-claim is
		// handled by the subsequent insert refreshing the row.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM usernames WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO usernames (username_key, username, user_id, updated_at)
			 VALUES ($1, $2, $3, $4)`, key, username, userID, now); err != nil {
			// The primary key catches claims racing past the row lock check.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return common.ErrorUsernameTaken
			}
			return fmt.Errorf("db error: %w", err)
		}

		// Mirror onto the profile row so a plain profile load sees the
		// committed username without consulting the registry. The claim can
		// land before the user ever saved a profile, so this upserts.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (user_id, username, username_updated_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id) DO UPDATE
			 SET username = EXCLUDED.username, username_updated_at = EXCLUDED.username_updated_at`,
			userID, username, now); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &Claim{Username: username, UpdatedAt: now}, nil
}
