// Copyright (c) 2026 Tessera. All rights reserved.

package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/platform/dberr"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/pkg/pagination"
)

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct{}

// NewPostgresStore creates a new PostgreSQL implementation of the [Store].
func NewPostgresStore() *PostgresStore {
	return &PostgresStore{}
}

/*
Create persists a new project record into the projects.project table.

Returns:
  - error: apperr.Conflict on duplicate slug, or storage errors
*/
func (store *PostgresStore) Create(ctx context.Context, db *pgxpool.Pool, p *Project) error {
	const query = `
		INSERT INTO projects.project (
			id, name, slug, description, createdby, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "A project with this slug already exists")
	}

	return nil
}

/*
List returns a page of projects ordered by creation time, newest first,
plus the total count for pagination metadata.
*/
func (store *PostgresStore) List(ctx context.Context, db *pgxpool.Pool, params pagination.Params) ([]Project, int, error) {
	const countQuery = `
		SELECT COUNT(*) FROM projects.project WHERE deletedat IS NULL`

	var total int
	if err := db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("project_store_count_failed: %w", err)
	}

	const query = `
		SELECT id, name, slug, description, createdby, createdat, updatedat
		FROM projects.project
		WHERE deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("project_store_list_failed: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0, params.Limit)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("project_store_scan_failed: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("project_store_rows_failed: %w", err)
	}

	return projects, total, nil
}

// FindBySlug retrieves a project by its URL slug.
func (store *PostgresStore) FindBySlug(ctx context.Context, db *pgxpool.Pool, slug string) (*Project, error) {
	const query = `
		SELECT id, name, slug, description, createdby, createdat, updatedat
		FROM projects.project
		WHERE slug = $1 AND deletedat IS NULL`

	return store.scanOne(ctx, db, query, slug)
}

// FindByID retrieves a project by its primary key.
func (store *PostgresStore) FindByID(ctx context.Context, db *pgxpool.Pool, id string) (*Project, error) {
	const query = `
		SELECT id, name, slug, description, createdby, createdat, updatedat
		FROM projects.project
		WHERE id = $1 AND deletedat IS NULL`

	return store.scanOne(ctx, db, query, id)
}

/*
MemberRole returns the user's role on the project.

Returns:
  - rbac.ResourceRole: The membership role, or "" when not a member
*/
func (store *PostgresStore) MemberRole(ctx context.Context, db *pgxpool.Pool, projectID, userID string) (rbac.ResourceRole, error) {
	const query = `
		SELECT role FROM projects.member
		WHERE projectid = $1 AND userid = $2`

	var role rbac.ResourceRole
	err := db.QueryRow(ctx, query, projectID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("project_store_member_role_failed: %w", err)
	}

	return role, nil
}

// UpsertMember creates or updates a project membership.
func (store *PostgresStore) UpsertMember(ctx context.Context, db *pgxpool.Pool, m *Member) error {
	const query = `
		INSERT INTO projects.member (projectid, userid, role, createdat)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (projectid, userid) DO UPDATE SET role = EXCLUDED.role`

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := db.Exec(ctx, query, m.ProjectID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "Membership already exists")
	}

	return nil
}

// RemoveMember deletes a project membership. Removing a non-member succeeds.
func (store *PostgresStore) RemoveMember(ctx context.Context, db *pgxpool.Pool, projectID, userID string) error {
	const query = `
		DELETE FROM projects.member
		WHERE projectid = $1 AND userid = $2`

	if _, err := db.Exec(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("project_store_remove_member_failed: %w", err)
	}

	return nil
}

// ListMembers returns all memberships for a project.
func (store *PostgresStore) ListMembers(ctx context.Context, db *pgxpool.Pool, projectID string) ([]Member, error) {
	const query = `
		SELECT projectid, userid, role, createdat
		FROM projects.member
		WHERE projectid = $1
		ORDER BY createdat ASC`

	rows, err := db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("project_store_list_members_failed: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("project_store_scan_member_failed: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project_store_rows_failed: %w", err)
	}

	return members, nil
}

// scanOne runs a single-row project query.
func (store *PostgresStore) scanOne(ctx context.Context, db *pgxpool.Pool, query string, arg any) (*Project, error) {
	p := &Project{}
	err := db.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "")
	}

	return p, nil
}
