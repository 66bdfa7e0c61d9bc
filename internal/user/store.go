// Copyright (c) 2026 Tessera. All rights reserved.

package user

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store abstracts account persistence.
//
// # Partitioning
//
// Every method takes the partition pool explicitly. The pool is chosen per
// request by the tenant resolver, so a store instance is shared across
// tenants while its queries never are.
type Store interface {
	// Create persists a new account. Fails with a Conflict error when the
	// email is already registered in this partition.
	Create(ctx context.Context, db *pgxpool.Pool, u *User) error

	// FindByEmail retrieves an account by its unique email address.
	FindByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*User, error)

	// FindByID retrieves an account by its primary key.
	FindByID(ctx context.Context, db *pgxpool.Pool, id string) (*User, error)

	// MarkVerified flips the email-verified flag.
	MarkVerified(ctx context.Context, db *pgxpool.Pool, id string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, db *pgxpool.Pool, id, passwordHash string) error
}
