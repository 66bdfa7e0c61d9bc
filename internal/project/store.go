// Copyright (c) 2026 Tessera. All rights reserved.

package project

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/pkg/pagination"
)

// Store abstracts project persistence. Methods take the partition pool
// resolved for the current request.
type Store interface {
	// Create persists a new project. Fails with a Conflict error when the
	// slug is already taken in this partition.
	Create(ctx context.Context, db *pgxpool.Pool, p *Project) error

	// List returns a page of projects plus the total count.
	List(ctx context.Context, db *pgxpool.Pool, params pagination.Params) ([]Project, int, error)

	// FindBySlug retrieves a project by its URL slug.
	FindBySlug(ctx context.Context, db *pgxpool.Pool, slug string) (*Project, error)

	// FindByID retrieves a project by its primary key.
	FindByID(ctx context.Context, db *pgxpool.Pool, id string) (*Project, error)

	// MemberRole returns the user's role on the project, or "" when the user
	// is not a member.
	MemberRole(ctx context.Context, db *pgxpool.Pool, projectID, userID string) (rbac.ResourceRole, error)

	// UpsertMember creates or updates a project membership.
	UpsertMember(ctx context.Context, db *pgxpool.Pool, m *Member) error

	// RemoveMember deletes a project membership. Removing a non-member is a
	// no-op.
	RemoveMember(ctx context.Context, db *pgxpool.Pool, projectID, userID string) error

	// ListMembers returns all memberships for a project.
	ListMembers(ctx context.Context, db *pgxpool.Pool, projectID string) ([]Member, error)
}
