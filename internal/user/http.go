// Copyright (c) 2026 Tessera. All rights reserved.

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tesserahq/tessera/internal/platform/request"
	"github.com/tesserahq/tessera/internal/platform/respond"
	"github.com/tesserahq/tessera/internal/platform/validate"
	"github.com/tesserahq/tessera/internal/session"
)

// Handler implements the HTTP layer for account lifecycle and sign-in.
type Handler struct {
	userService *Service
}

// NewHandler constructs a new user [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// PublicRoutes returns the endpoints reachable without a session. They still
// run behind tenant resolution: registration and sign-in are always scoped
// to the tenant the request arrived on.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	// Account Creation
	router.Post("/register", handler.register)
	router.Post("/confirm-email", handler.confirmEmail)

	// Sign-In Lifecycle
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Password Recovery
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// SessionRoutes returns the public session-introspection prefix. It is
// mounted outside the session-protected group: the endpoint exists precisely
// so a frontend can ask "who am I, if anyone" without already holding a
// proven session.
func (handler *Handler) SessionRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.introspectSession)

	return router
}

// Routes returns the session-protected account endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.getMe)

	return router
}

// # Registration Endpoints

// registerRequest defines the JSON payload for account creation.
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

/*
POST /api/v1/auth/register.

Description: Creates an unverified account in the current tenant's partition
and emails a confirmation link.

Request:
  - body: registerRequest

Response:
  - 201: User: The created account
  - 400: Validation: Invalid email or weak password
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		MaxLen("password", input.Password, 72).
		MaxLen("display_name", input.DisplayName, 50)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.userService.Register(request.Context(), tc, RegisterInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// tokenRequest carries a raw out-of-band token.
type tokenRequest struct {
	Token string `json:"token"`
}

/*
POST /api/v1/auth/confirm-email.

Description: Redeems an email confirmation token. The token must have been
minted under the same tenant this request resolved to, and each token
redeems at most once.

Request:
  - body: tokenRequest

Response:
  - 204: No Content: Account verified
  - 400: INVALID_TOKEN/TOKEN_EXPIRED/INVALID_TOKEN_PURPOSE/TOKEN_TENANT_MISMATCH
*/
func (handler *Handler) confirmEmail(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("token", input.Token)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.ConfirmEmail(request.Context(), tc, input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Sign-In Endpoints

// loginRequest defines credentials for an authentication attempt.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials and sets a session cookie bound to the
tenant resolved for this request.

Request:
  - body: loginRequest

Response:
  - 200: User: The authenticated account (cookie set on response)
  - 401: UNAUTHORIZED: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Required("password", input.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	authenticated, err := handler.userService.Login(request.Context(), writer, tc, LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, authenticated)
}

/*
POST /api/v1/auth/logout.

Description: Revokes the current session and expires its cookie. Idempotent;
succeeds with or without a live session.

Response:
  - 204: No Content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	sessionID := session.CookieID(request)

	if err := handler.userService.Logout(request.Context(), writer, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Password Recovery Endpoints

// forgotPasswordRequest identifies the account to recover.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

/*
POST /api/v1/auth/forgot-password.

Description: Emails a password reset link. Responds 204 whether or not the
email is registered, so the endpoint cannot be used for enumeration.

Request:
  - body: forgotPasswordRequest

Response:
  - 204: No Content
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.RequestPasswordReset(request.Context(), tc, input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// resetPasswordRequest completes a password reset.
type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
POST /api/v1/auth/reset-password.

Description: Redeems a single-use reset token and replaces the password.

Request:
  - body: resetPasswordRequest

Response:
  - 204: No Content: Password replaced
  - 400: INVALID_TOKEN/TOKEN_EXPIRED/INVALID_TOKEN_PURPOSE/TOKEN_TENANT_MISMATCH
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("token", input.Token).
		Required("new_password", input.NewPassword).
		MinLen("new_password", input.NewPassword, 8).
		MaxLen("new_password", input.NewPassword, 72)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.ConfirmPasswordReset(request.Context(), tc, input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Account Endpoints

/*
GET /api/v1/me.

Description: Retrieves the profile of the authenticated user.

Response:
  - 200: User: The account profile
  - 401: AUTH_REQUIRED: No valid session
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
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

	profile, err := handler.userService.GetProfile(request.Context(), tc, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// sessionIntrospection is the response shape for session introspection.
// All fields beyond Authenticated are omitted for anonymous callers.
type sessionIntrospection struct {
	Authenticated     bool     `json:"authenticated"`
	UserID            string   `json:"user_id,omitempty"`
	TenantID          string   `json:"tenant_id,omitempty"`
	Permissions       []string `json:"permissions,omitempty"`
	PermissionVersion int64    `json:"permission_version,omitempty"`
	IssuedAt          int64    `json:"issued_at,omitempty"`
}

/*
GET /api/v1/session.

Description: Returns the current session's identity, tenant binding, and
cached permission snapshot. Public: a caller with no session (or a session
bound to another tenant) gets an anonymous introspection rather than an
error, so frontends can bootstrap their state with a single unconditional
call.

Response:
  - 200: sessionIntrospection (authenticated or anonymous)
*/
func (handler *Handler) introspectSession(writer http.ResponseWriter, request *http.Request) {
	tc, err := requestutil.RequiredTenant(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sess := handler.userService.IntrospectSession(request.Context(), tc.ID, session.CookieID(request))
	if sess == nil {
		respond.OK(writer, sessionIntrospection{Authenticated: false})
		return
	}

	respond.OK(writer, sessionIntrospection{
		Authenticated:     true,
		UserID:            sess.UserID,
		TenantID:          sess.TenantID,
		Permissions:       sess.Permissions,
		PermissionVersion: sess.PermissionVersion,
		IssuedAt:          sess.IssuedAt,
	})
}
