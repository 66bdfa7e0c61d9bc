// Copyright (c) 2026 Tessera. All rights reserved.

package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tesserahq/tessera/internal/platform/request"
	"github.com/tesserahq/tessera/internal/platform/respond"
	"github.com/tesserahq/tessera/internal/platform/validate"
)

// Handler implements the HTTP layer for role and permission administration.
type Handler struct {
	rbacService *Service
}

// NewHandler constructs the RBAC admin [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{rbacService: service}
}

// Routes returns a [chi.Router] with the role administration endpoints.
// All routes sit behind the authenticated group; each handler additionally
// requires the roles:manage permission.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Permission Registry
	router.Get("/permissions", handler.listPermissions)

	// Role Management
	router.Get("/roles", handler.listRoles)
	router.Post("/roles", handler.createRole)
	router.Post("/roles/{id}/assign", handler.assignRole)
	router.Post("/roles/{id}/revoke", handler.revokeRole)

	return router
}

/*
GET /api/v1/admin/permissions.

Description: Lists the permission registry for admin display and role builders.

Response:
  - 200: []PermissionDefinition: Registered permission codes
  - 403: PERMISSION_DENIED: Missing roles:manage
*/
func (handler *Handler) listPermissions(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "roles:manage"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	defs, err := handler.rbacService.ListDefinitions(request.Context(), tc.Partition)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, defs)
}

/*
GET /api/v1/admin/roles.

Description: Lists all roles defined in the current tenant's partition.

Response:
  - 200: []Role: Roles with their permission code lists
  - 403: PERMISSION_DENIED: Missing roles:manage
*/
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "roles:manage"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	roles, err := handler.rbacService.ListRoles(request.Context(), tc.Partition)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, roles)
}

// createRoleRequest defines the JSON payload for role creation.
type createRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

/*
POST /api/v1/admin/roles.

Description: Creates a role with a validated set of permission codes.

Request:
  - body: createRoleRequest

Response:
  - 201: Role: The created role
  - 400: Validation: Invalid name or permission codes
  - 403: PERMISSION_DENIED: Missing roles:manage
  - 409: CONFLICT: Role name already taken
*/
func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "roles:manage"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MinLen("name", input.Name, 2).
		MaxLen("name", input.Name, 100).
		MaxLen("description", input.Description, 500)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.rbacService.CreateRole(request.Context(), tc.Partition, CreateRoleInput{
		Name:        input.Name,
		Description: input.Description,
		Permissions: input.Permissions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, role)
}

// roleMembershipRequest identifies the user for assign/revoke operations.
type roleMembershipRequest struct {
	UserID string `json:"user_id"`
}

/*
POST /api/v1/admin/roles/{id}/assign.

Description: Grants a role to a user. The user's permission version is bumped
so any live session picks up the change on its next permission check.

Request:
  - id: string (Role UUID)
  - body: roleMembershipRequest

Response:
  - 204: No Content: Role assigned
  - 403: PERMISSION_DENIED: Missing roles:manage
  - 404: NOT_FOUND: Role does not exist
*/
func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "roles:manage"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	roleID := chi.URLParam(request, "id")

	var input roleMembershipRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("user_id", input.UserID).UUID("user_id", input.UserID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.rbacService.AssignRole(request.Context(), tc.Partition, tc.ID, input.UserID, roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/admin/roles/{id}/revoke.

Description: Removes a role from a user and bumps their permission version.

Request:
  - id: string (Role UUID)
  - body: roleMembershipRequest

Response:
  - 204: No Content: Role revoked
  - 403: PERMISSION_DENIED: Missing roles:manage
*/
func (handler *Handler) revokeRole(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "roles:manage"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	roleID := chi.URLParam(request, "id")

	var input roleMembershipRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("user_id", input.UserID).UUID("user_id", input.UserID)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.rbacService.RevokeRole(request.Context(), tc.Partition, tc.ID, input.UserID, roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
