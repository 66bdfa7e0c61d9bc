// Copyright (c) 2026 Tessera. All rights reserved.

package session

import (
	"context"
	"time"
)

// Store defines the data access contract for sessions.
//
// # Review Process
//
// This interface is placed in a separate file from session.go so entity
// changes and storage-contract changes can be reviewed independently.
//
// # Implementations
//
// The canonical implementation for Tessera is Redis (expiry handled by TTL).
// Tests use an in-memory map implementation.
type Store interface {
	// Get returns the session stored under the opaque id.
	//
	// Returns [apperr.AuthRequired] if the id is unknown or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores or replaces the session under the opaque id with the given TTL.
	Set(ctx context.Context, id string, sess *Session, ttl time.Duration) error

	// Update replaces the session content while preserving the remaining
	// TTL, so rewriting a record never extends its lifetime. Updating an
	// absent or expired id is a no-op.
	Update(ctx context.Context, id string, sess *Session) error

	// Clear removes the session. Clearing an absent id is not an error
	// (logout is idempotent).
	Clear(ctx context.Context, id string) error
}
