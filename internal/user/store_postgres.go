// Copyright (c) 2026 Tessera. All rights reserved.

package user

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/dberr"
)

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct{}

// NewPostgresStore creates a new PostgreSQL implementation of the [Store].
func NewPostgresStore() *PostgresStore {
	return &PostgresStore{}
}

/*
Create persists a new account record into the users.account table.

Parameters:
  - ctx: context.Context
  - db: *pgxpool.Pool (Partition pool for the current tenant)
  - u: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or storage errors
*/
func (store *PostgresStore) Create(ctx context.Context, db *pgxpool.Pool, u *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, displayname, isactive, isverified, createdat, updatedat
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)`

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := db.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		u.IsActive,
		u.IsVerified,
		u.CreatedAt,
		u.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Email is already registered")
	}

	return nil
}

/*
FindByEmail retrieves an account by its unique email address.

Description: Performs a lookup on the account table, filtering out
soft-deleted accounts.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, displayname, isactive, isverified, createdat, updatedat
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	return store.scanOne(ctx, db, query, email)
}

/*
FindByID retrieves an account by its primary key.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindByID(ctx context.Context, db *pgxpool.Pool, id string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, displayname, isactive, isverified, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	return store.scanOne(ctx, db, query, id)
}

// MarkVerified flips the email-verified flag after a confirmed sign-up.
func (store *PostgresStore) MarkVerified(ctx context.Context, db *pgxpool.Pool, id string) error {
	const query = `
		UPDATE users.account
		SET isverified = TRUE, updatedat = $2
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("user_store_mark_verified_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdatePassword replaces the stored password hash.
func (store *PostgresStore) UpdatePassword(ctx context.Context, db *pgxpool.Pool, id, passwordHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := db.Exec(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("user_store_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// scanOne runs a single-row account query. The password hash column is
// nullable because externally provisioned accounts carry no password.
func (store *PostgresStore) scanOne(ctx context.Context, db *pgxpool.Pool, query string, arg any) (*User, error) {
	u := &User{}
	var passwordHash *string

	err := db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&passwordHash,
		&u.DisplayName,
		&u.IsActive,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "")
	}

	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}

	return u, nil
}
