// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Tessera.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Security taxonomy: distinct codes for authentication, tenant-binding, token,
    and authorization failures so clients can choose the right remediation.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Tessera API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "TENANT_MISMATCH").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Project") // Returns "Project not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Authentication Errors (401)

// AuthRequired creates the 401 [AppError] returned when no valid session is
// present. The message is intentionally generic: it never reveals whether the
// credential or the tenant was the specific problem.
func AuthRequired() *AppError {
	return &AppError{
		Code:       "AUTH_REQUIRED",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionTenantMismatch creates the 401 [AppError] returned when a session's
// embedded tenant id does not equal the tenant resolved for the request.
//
// This is deliberately distinct from [AuthRequired]: the client holds a valid
// session, just for the wrong tenant, and should re-authenticate there.
func SessionTenantMismatch() *AppError {
	return &AppError{
		Code:       "TENANT_MISMATCH",
		Message:    "Session does not belong to this tenant",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Tenant Resolution Errors

// TenantMismatch creates the 403 [AppError] returned at resolution time when
// the explicit tenant header contradicts the subdomain-derived tenant.
func TenantMismatch() *AppError {
	return &AppError{
		Code:       "TENANT_MISMATCH",
		Message:    "Tenant header does not match request subdomain",
		HTTPStatus: http.StatusForbidden,
	}
}

// SubdomainRequired creates the 403 [AppError] returned in production when no
// single-level subdomain can be extracted from the Host header.
func SubdomainRequired() *AppError {
	return &AppError{
		Code:       "SUBDOMAIN_REQUIRED",
		Message:    "A tenant subdomain is required",
		HTTPStatus: http.StatusForbidden,
	}
}

// TenantRequired creates the 403 [AppError] returned in development when
// neither a subdomain nor a tenant header identifies the tenant.
func TenantRequired() *AppError {
	return &AppError{
		Code:       "TENANT_REQUIRED",
		Message:    "Tenant could not be determined from the request",
		HTTPStatus: http.StatusForbidden,
	}
}

// TenantNotConfigured creates the 500 [AppError] returned when a resolved
// tenant has no partition bound in the registry. This is a server
// configuration fault, never a client error, and is never retried.
func TenantNotConfigured(tenantID string) *AppError {
	return &AppError{
		Code:       "TENANT_NOT_CONFIGURED",
		Message:    "Tenant data partition is not configured",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      fmt.Errorf("no partition handle registered for tenant %q", tenantID),
	}
}

// # Token Errors (400)

// InvalidToken creates the 400 [AppError] for tokens failing signature or
// structural validation.
func InvalidToken() *AppError {
	return &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Invalid token",
		HTTPStatus: http.StatusBadRequest,
	}
}

// TokenExpired creates the 400 [AppError] for structurally valid but expired
// tokens, so the UI can show "link expired" rather than "invalid link".
func TokenExpired() *AppError {
	return &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Token has expired",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidTokenPurpose creates the 400 [AppError] for tokens presented at the
// wrong call site (e.g. a confirmation token replayed as a reset token).
func InvalidTokenPurpose() *AppError {
	return &AppError{
		Code:       "INVALID_TOKEN_PURPOSE",
		Message:    "Invalid token purpose",
		HTTPStatus: http.StatusBadRequest,
	}
}

// TokenTenantMismatch creates the 400 [AppError] for tokens minted under a
// different tenant than the one resolved for the verifying request.
func TokenTenantMismatch() *AppError {
	return &AppError{
		Code:       "TOKEN_TENANT_MISMATCH",
		Message:    "Token does not belong to this tenant",
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Authorization Errors (403)

// PermissionDenied creates the 403 [AppError] returned when an authenticated
// user lacks the required permission code.
func PermissionDenied(code string) *AppError {
	return &AppError{
		Code:       "PERMISSION_DENIED",
		Message:    "Missing required permission: " + code,
		HTTPStatus: http.StatusForbidden,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries the given machine-readable code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
