// Copyright (c) 2026 Tessera. All rights reserved.

package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tesserahq/tessera/internal/platform/request"
	"github.com/tesserahq/tessera/internal/platform/respond"
	"github.com/tesserahq/tessera/internal/platform/validate"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/pkg/pagination"
)

// Handler implements the HTTP layer for projects.
type Handler struct {
	projectService *Service
	rbacService    *rbac.Service
}

// NewHandler constructs a project [Handler].
func NewHandler(service *Service, rbacService *rbac.Service) *Handler {
	return &Handler{projectService: service, rbacService: rbacService}
}

// Routes returns a [chi.Router] with the project endpoints. All routes sit
// behind the authenticated group.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Project Lifecycle
	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{slug}", handler.getBySlug)

	// Membership
	router.Get("/{id}/members", handler.listMembers)
	router.Put("/{id}/members", handler.grantRole)
	router.Delete("/{id}/members/{userID}", handler.revokeMembership)

	return router
}

// createProjectRequest defines the JSON payload for project creation.
type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

/*
POST /api/v1/projects.

Description: Creates a project in the current tenant's partition. The
authenticated user becomes its owner.

Request:
  - body: createProjectRequest

Response:
  - 201: Project: The created project
  - 403: PERMISSION_DENIED: Missing projects:create
  - 409: CONFLICT: Slug already taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "projects:create"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createProjectRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MinLen("name", input.Name, 2).
		MaxLen("name", input.Name, 100).
		MaxLen("description", input.Description, 1000)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.projectService.Create(request.Context(), tc, userID, CreateInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
GET /api/v1/projects.

Description: Lists the tenant's projects, newest first.

Request:
  - page, limit: Query parameters

Response:
  - 200: []Project with pagination metadata
  - 403: PERMISSION_DENIED: Missing projects:view
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "projects:view"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	projects, meta, err := handler.projectService.List(request.Context(), tc, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, projects, meta)
}

/*
GET /api/v1/projects/{slug}.

Description: Retrieves a project by its URL slug.

Response:
  - 200: Project
  - 404: NOT_FOUND: No project with this slug
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rbacService.Require(request, "projects:view"); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.projectService.GetBySlug(request.Context(), tc, chi.URLParam(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
GET /api/v1/projects/{id}/members.

Description: Lists the project's memberships. The caller must be a member.

Response:
  - 200: []Member
  - 403: FORBIDDEN: Caller is not a member
*/
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	members, err := handler.projectService.ListMembers(request.Context(), tc, userID, chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

// grantRoleRequest defines the JSON payload for membership grants.
type grantRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

/*
PUT /api/v1/projects/{id}/members.

Description: Grants a user a role on the project. The caller's own project
role must sit strictly above the granted role in the hierarchy.

Request:
  - id: string (Project UUID)
  - body: grantRoleRequest

Response:
  - 204: No Content: Role granted
  - 403: FORBIDDEN: Hierarchy forbids the grant
  - 404: NOT_FOUND: Project does not exist
*/
func (handler *Handler) grantRole(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input grantRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("user_id", input.UserID).
		UUID("user_id", input.UserID).
		OneOf("role", input.Role, "owner", "admin", "member", "viewer")

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.projectService.GrantRole(
		request.Context(), tc, actorID,
		chi.URLParam(request, "id"), input.UserID, rbac.ResourceRole(input.Role),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/projects/{id}/members/{userID}.

Description: Removes a member from the project. The caller's project role
must sit strictly above the removed member's role.

Response:
  - 204: No Content: Member removed (or was never a member)
  - 403: FORBIDDEN: Hierarchy forbids the removal
*/
func (handler *Handler) revokeMembership(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.projectService.RevokeMembership(
		request.Context(), tc, actorID,
		chi.URLParam(request, "id"), chi.URLParam(request, "userID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
