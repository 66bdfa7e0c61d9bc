// Copyright (c) 2026 Tessera. All rights reserved.

package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/dberr"
)

// PostgresStore implements [Store] against a tenant partition.
type PostgresStore struct{}

// NewPostgresStore creates the PostgreSQL implementation of [Store].
func NewPostgresStore() *PostgresStore {
	return &PostgresStore{}
}

// UserPermissions returns the union of permission codes across all active,
// non-deleted roles assigned to the user.
func (store *PostgresStore) UserPermissions(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, error) {
	const query = `
		SELECT r.permissions
		FROM rbac.role r
		JOIN rbac.user_role ur ON ur.roleid = r.id
		WHERE ur.userid = $1 AND r.isactive = TRUE AND r.deletedat IS NULL`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_rbac_user_permissions_failed: %w", err)
	}
	defer rows.Close()

	union := make(Set)
	for rows.Next() {
		var codes []string
		if err := rows.Scan(&codes); err != nil {
			return nil, fmt.Errorf("postgres_rbac_user_permissions_scan_failed: %w", err)
		}
		for _, code := range codes {
			union[code] = struct{}{}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_rbac_user_permissions_rows_failed: %w", err)
	}

	return union.Slice(), nil
}

// CreateRole persists a new role record.
func (store *PostgresStore) CreateRole(ctx context.Context, db *pgxpool.Pool, role *Role) error {
	const query = `
		INSERT INTO rbac.role (id, name, description, permissions, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now

	_, err := db.Exec(ctx, query,
		role.ID,
		role.Name,
		role.Description,
		role.Permissions,
		role.IsActive,
		role.CreatedAt,
		role.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "A role with this name already exists")
	}

	return nil
}

// ListRoles returns all non-deleted roles in the partition.
func (store *PostgresStore) ListRoles(ctx context.Context, db *pgxpool.Pool) ([]Role, error) {
	const query = `
		SELECT id, name, description, permissions, isactive, createdat, updatedat
		FROM rbac.role
		WHERE deletedat IS NULL
		ORDER BY name`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_rbac_list_roles_failed: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Description,
			&role.Permissions,
			&role.IsActive,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_rbac_list_roles_scan_failed: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_rbac_list_roles_rows_failed: %w", err)
	}

	return roles, nil
}

// FindRole returns a role by id, or [apperr.NotFound].
func (store *PostgresStore) FindRole(ctx context.Context, db *pgxpool.Pool, roleID string) (*Role, error) {
	const query = `
		SELECT id, name, description, permissions, isactive, createdat, updatedat
		FROM rbac.role
		WHERE id = $1 AND deletedat IS NULL`

	role := &Role{}
	err := db.QueryRow(ctx, query, roleID).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Permissions,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role")
		}
		return nil, fmt.Errorf("postgres_rbac_find_role_failed: %w", err)
	}

	return role, nil
}

// AssignRole links a role to a user. Idempotent via ON CONFLICT.
func (store *PostgresStore) AssignRole(ctx context.Context, db *pgxpool.Pool, userID, roleID string) error {
	const query = `
		INSERT INTO rbac.user_role (userid, roleid, createdat)
		VALUES ($1, $2, $3)
		ON CONFLICT (userid, roleid) DO NOTHING`

	if _, err := db.Exec(ctx, query, userID, roleID, time.Now()); err != nil {
		return fmt.Errorf("postgres_rbac_assign_role_failed: %w", err)
	}

	return nil
}

// RevokeRole unlinks a role from a user.
func (store *PostgresStore) RevokeRole(ctx context.Context, db *pgxpool.Pool, userID, roleID string) error {
	const query = `DELETE FROM rbac.user_role WHERE userid = $1 AND roleid = $2`

	if _, err := db.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("postgres_rbac_revoke_role_failed: %w", err)
	}

	return nil
}

// ListDefinitions returns the permission registry ordered for admin display.
func (store *PostgresStore) ListDefinitions(ctx context.Context, db *pgxpool.Pool) ([]PermissionDefinition, error) {
	const query = `
		SELECT code, name, description, category
		FROM rbac.permission
		ORDER BY category, code`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_rbac_list_definitions_failed: %w", err)
	}
	defer rows.Close()

	var defs []PermissionDefinition
	for rows.Next() {
		var def PermissionDefinition
		if err := rows.Scan(&def.Code, &def.Name, &def.Description, &def.Category); err != nil {
			return nil, fmt.Errorf("postgres_rbac_list_definitions_scan_failed: %w", err)
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_rbac_list_definitions_rows_failed: %w", err)
	}

	return defs, nil
}
