// Copyright (c) 2026 Tessera. All rights reserved.

package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines the data access contract for roles and the permission
// registry.
//
// # Partition Handling
//
// Every method takes the partition pool explicitly: which physical database
// serves the query is decided per request by the tenant resolver, never
// baked into the repository. This keeps the store a stateless adapter over
// whichever partition the security pipeline selected.
//
// # Implementations
//
// The canonical implementation is PostgreSQL. Tests use in-memory fakes.
type Store interface {
	// UserPermissions returns the union of permission codes across all
	// active, non-deleted roles assigned to the user.
	UserPermissions(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, error)

	// CreateRole persists a new role. Permission codes are validated by the
	// service before reaching the store.
	CreateRole(ctx context.Context, db *pgxpool.Pool, role *Role) error

	// ListRoles returns all non-deleted roles in the partition.
	ListRoles(ctx context.Context, db *pgxpool.Pool) ([]Role, error)

	// FindRole returns a role by id.
	//
	// Returns [apperr.NotFound] if the role does not exist.
	FindRole(ctx context.Context, db *pgxpool.Pool, roleID string) (*Role, error)

	// AssignRole links a role to a user. Assigning an already-held role is
	// not an error (idempotent).
	AssignRole(ctx context.Context, db *pgxpool.Pool, userID, roleID string) error

	// RevokeRole unlinks a role from a user.
	RevokeRole(ctx context.Context, db *pgxpool.Pool, userID, roleID string) error

	// ListDefinitions returns the permission registry for admin display and
	// role-grant validation.
	ListDefinitions(ctx context.Context, db *pgxpool.Pool) ([]PermissionDefinition, error)
}

// VersionStore tracks per-user permission versions, bumped whenever role
// assignments or role contents change, so session-cached permission
// snapshots can be detected as stale.
type VersionStore interface {
	// Current returns the user's permission version. An untracked user is
	// version 0.
	Current(ctx context.Context, tenantID, userID string) (int64, error)

	// Bump increments and returns the user's permission version.
	Bump(ctx context.Context, tenantID, userID string) (int64, error)
}
