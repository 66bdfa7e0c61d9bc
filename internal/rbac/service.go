// Copyright (c) 2026 Tessera. All rights reserved.

package rbac

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/ctxutil"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/pkg/uuidv7"
)

// Service implements permission resolution and role administration.
//
// # Session Interaction
//
// Sessions cache a permission snapshot taken at sign-in. The service
// compares the snapshot's version against the live version store on every
// check and transparently refreshes stale snapshots from the partition, so
// role changes take effect without forcing re-authentication.
type Service struct {
	store    Store
	versions VersionStore
	sessions *session.Manager
}

// NewService constructs the RBAC [Service].
func NewService(store Store, versions VersionStore, sessions *session.Manager) *Service {
	return &Service{store: store, versions: versions, sessions: sessions}
}

// # Permission Checks

// Has reports whether the request's authenticated user holds the permission.
//
// Requires [middleware.ResolveTenant] and [middleware.RequireSession] to
// have run; fails closed otherwise.
func (service *Service) Has(request *http.Request, code string) (bool, error) {
	granted, err := service.grantedSet(request)
	if err != nil {
		return false, err
	}

	return granted.Has(code), nil
}

// Require guards a privileged operation: it returns
// [apperr.PermissionDenied] unless the request's user holds the permission.
//
// # Usage
//
// Called at the top of handlers/service methods for privileged operations:
//
//	if err := rbacService.Require(request, "roles:manage"); err != nil {
//	    respond.Error(writer, request, err)
//	    return
//	}
func (service *Service) Require(request *http.Request, code string) error {
	ok, err := service.Has(request, code)
	if err != nil {
		return err
	}

	if !ok {
		return apperr.PermissionDenied(code)
	}

	return nil
}

// GetUserPermissions returns the union of the user's role-derived permission
// codes, straight from the partition (no session cache involved). Used at
// sign-in to take the initial snapshot.
func (service *Service) GetUserPermissions(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, error) {
	return service.store.UserPermissions(ctx, db, userID)
}

// CurrentVersion returns the user's live permission version.
func (service *Service) CurrentVersion(ctx context.Context, tenantID, userID string) (int64, error) {
	return service.versions.Current(ctx, tenantID, userID)
}

// grantedSet resolves the effective permission set for the request,
// refreshing the session snapshot when the live version moved past it.
func (service *Service) grantedSet(request *http.Request) (Set, error) {
	ctx := request.Context()

	sess := ctxutil.GetSession(ctx)
	if sess == nil {
		return nil, apperr.AuthRequired()
	}

	tc := ctxutil.GetTenant(ctx)
	if tc == nil {
		return nil, apperr.Internal(fmt.Errorf("permission check before tenant resolution"))
	}

	current, err := service.versions.Current(ctx, tc.ID, sess.UserID)
	if err != nil {
		return nil, err
	}

	if current > sess.PermissionVersion {
		codes, err := service.store.UserPermissions(ctx, tc.Partition, sess.UserID)
		if err != nil {
			return nil, err
		}

		sess.Permissions = codes
		sess.PermissionVersion = current

		if id := ctxutil.GetSessionID(ctx); id != "" {
			if err := service.sessions.Refresh(ctx, id, sess); err != nil {
				return nil, err
			}
		}
	}

	return NewSet(sess.Permissions), nil
}

// # Role Administration

// CreateRoleInput holds the data required to define a new role.
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// CreateRole validates the permission codes and persists a new role.
//
// # Validation
//
// Wildcard codes must pass the grammar; exact codes must additionally exist
// in the permission registry, so typos cannot silently create dead grants.
func (service *Service) CreateRole(ctx context.Context, db *pgxpool.Pool, input CreateRoleInput) (*Role, error) {
	known, err := service.knownCodes(ctx, db)
	if err != nil {
		return nil, err
	}

	for _, code := range input.Permissions {
		if !ValidCode(code) {
			return nil, apperr.ValidationError("Invalid permission code", apperr.FieldError{
				Field:   "permissions",
				Message: fmt.Sprintf("%q is not a valid permission code", code),
			})
		}

		isWildcard := code == SuperWildcard || strings.HasSuffix(code, ":*")
		if !isWildcard {
			if _, ok := known[code]; !ok {
				return nil, apperr.ValidationError("Unknown permission code", apperr.FieldError{
					Field:   "permissions",
					Message: fmt.Sprintf("%q is not a registered permission", code),
				})
			}
		}
	}

	role := &Role{
		ID:          uuidv7.New(),
		Name:        input.Name,
		Description: input.Description,
		Permissions: input.Permissions,
		IsActive:    true,
	}

	if err := service.store.CreateRole(ctx, db, role); err != nil {
		return nil, err
	}

	return role, nil
}

// ListRoles returns all roles in the partition.
func (service *Service) ListRoles(ctx context.Context, db *pgxpool.Pool) ([]Role, error) {
	return service.store.ListRoles(ctx, db)
}

// ListDefinitions returns the permission registry.
func (service *Service) ListDefinitions(ctx context.Context, db *pgxpool.Pool) ([]PermissionDefinition, error) {
	return service.store.ListDefinitions(ctx, db)
}

// AssignRole links a role to a user and bumps the user's permission version
// so any cached session snapshot refreshes on its next check.
func (service *Service) AssignRole(ctx context.Context, db *pgxpool.Pool, tenantID, userID, roleID string) error {
	if _, err := service.store.FindRole(ctx, db, roleID); err != nil {
		return err
	}

	if err := service.store.AssignRole(ctx, db, userID, roleID); err != nil {
		return err
	}

	if _, err := service.versions.Bump(ctx, tenantID, userID); err != nil {
		return err
	}

	return nil
}

// RevokeRole unlinks a role from a user and bumps the permission version.
func (service *Service) RevokeRole(ctx context.Context, db *pgxpool.Pool, tenantID, userID, roleID string) error {
	if err := service.store.RevokeRole(ctx, db, userID, roleID); err != nil {
		return err
	}

	if _, err := service.versions.Bump(ctx, tenantID, userID); err != nil {
		return err
	}

	return nil
}

// knownCodes loads the registry into a lookup set.
func (service *Service) knownCodes(ctx context.Context, db *pgxpool.Pool) (map[string]struct{}, error) {
	defs, err := service.store.ListDefinitions(ctx, db)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		known[def.Code] = struct{}{}
	}

	return known, nil
}
