// Copyright (c) 2026 Tessera. All rights reserved.

package project

import (
	"context"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/internal/tenant"
	"github.com/tesserahq/tessera/pkg/pagination"
	"github.com/tesserahq/tessera/pkg/slug"
	"github.com/tesserahq/tessera/pkg/uuidv7"
)

// Service implements project use cases.
//
// # Authorization Model
//
// Tenant-wide permissions (projects:create and friends) gate operations at
// the handler layer. Membership operations are additionally governed here by
// the resource-role hierarchy: an actor may only grant or revoke roles
// strictly below their own.
type Service struct {
	store Store
}

// NewService constructs a project [Service].
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput holds the data required to create a project.
type CreateInput struct {
	Name        string
	Description string
}

/*
Create persists a new project and enrolls the creator as its owner.

Description: The slug is derived from the name. Slug collisions surface as a
Conflict error from the store.

Parameters:
  - ctx: context.Context
  - tc: *tenant.Context
  - creatorID: string (The authenticated user)
  - input: CreateInput

Returns:
  - *Project: Created entity
  - error: Conflict or storage errors
*/
func (service *Service) Create(ctx context.Context, tc *tenant.Context, creatorID string, input CreateInput) (*Project, error) {
	p := &Project{
		ID:          uuidv7.New(),
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		CreatedBy:   creatorID,
	}

	if err := service.store.Create(ctx, tc.Partition, p); err != nil {
		return nil, err
	}

	// The creator owns the project. Membership failure here would leave an
	// orphaned project, so it is surfaced rather than swallowed.
	member := &Member{
		ProjectID: p.ID,
		UserID:    creatorID,
		Role:      rbac.ResourceRoleOwner,
	}
	if err := service.store.UpsertMember(ctx, tc.Partition, member); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns a page of the tenant's projects plus pagination metadata.
func (service *Service) List(ctx context.Context, tc *tenant.Context, params pagination.Params) ([]Project, pagination.Meta, error) {
	projects, total, err := service.store.List(ctx, tc.Partition, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return projects, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// GetBySlug retrieves a project by its URL slug.
func (service *Service) GetBySlug(ctx context.Context, tc *tenant.Context, projectSlug string) (*Project, error) {
	return service.store.FindBySlug(ctx, tc.Partition, projectSlug)
}

// ListMembers returns the project's memberships. The actor must be a member.
func (service *Service) ListMembers(ctx context.Context, tc *tenant.Context, actorID, projectID string) ([]Member, error) {
	actorRole, err := service.store.MemberRole(ctx, tc.Partition, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if !actorRole.Valid() {
		return nil, apperr.Forbidden("You are not a member of this project")
	}

	return service.store.ListMembers(ctx, tc.Partition, projectID)
}

/*
GrantRole gives a user a role on a project.

Description: The actor must hold a project role able to assign the target
role. Assignable roles are strictly below the actor's own: an admin can add
members and viewers but can neither mint another admin nor an owner.

Parameters:
  - ctx: context.Context
  - tc: *tenant.Context
  - actorID: string (The authenticated user performing the grant)
  - projectID: string
  - targetUserID: string
  - role: rbac.ResourceRole

Returns:
  - error: Forbidden when the hierarchy forbids the grant, or storage errors
*/
func (service *Service) GrantRole(ctx context.Context, tc *tenant.Context, actorID, projectID, targetUserID string, role rbac.ResourceRole) error {
	if !role.Valid() {
		return apperr.ValidationError("Invalid project role", apperr.FieldError{
			Field:   "role",
			Message: "Must be one of: owner, admin, member, viewer",
		})
	}

	if _, err := service.store.FindByID(ctx, tc.Partition, projectID); err != nil {
		return err
	}

	actorRole, err := service.store.MemberRole(ctx, tc.Partition, projectID, actorID)
	if err != nil {
		return err
	}

	if !actorRole.CanAssign(role) {
		return apperr.Forbidden("Your project role cannot assign this role")
	}

	// An actor also may not demote or replace someone at or above their own
	// level; the target's current role falls under the same rule.
	currentRole, err := service.store.MemberRole(ctx, tc.Partition, projectID, targetUserID)
	if err != nil {
		return err
	}
	if currentRole.Valid() && !actorRole.CanAssign(currentRole) {
		return apperr.Forbidden("Your project role cannot modify this member")
	}

	return service.store.UpsertMember(ctx, tc.Partition, &Member{
		ProjectID: projectID,
		UserID:    targetUserID,
		Role:      role,
	})
}

/*
RevokeMembership removes a user from a project.

Description: Bound by the same hierarchy as grants: the actor can only
remove members whose role they could assign.
*/
func (service *Service) RevokeMembership(ctx context.Context, tc *tenant.Context, actorID, projectID, targetUserID string) error {
	actorRole, err := service.store.MemberRole(ctx, tc.Partition, projectID, actorID)
	if err != nil {
		return err
	}

	currentRole, err := service.store.MemberRole(ctx, tc.Partition, projectID, targetUserID)
	if err != nil {
		return err
	}

	if !currentRole.Valid() {
		// Already not a member; removal is idempotent.
		return nil
	}

	if !actorRole.CanAssign(currentRole) {
		return apperr.Forbidden("Your project role cannot remove this member")
	}

	return service.store.RemoveMember(ctx, tc.Partition, projectID, targetUserID)
}
