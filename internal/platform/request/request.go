// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling across handlers.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/ctxutil"
	"github.com/tesserahq/tessera/internal/platform/validate"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Session extracts the authenticated session from the request context.

Returns nil if the request is not authenticated.
*/
func Session(request *http.Request) *session.Session {
	return ctxutil.GetSession(request.Context())
}

/*
RequiredSession ensures the request is authenticated and returns the session.

Returns:
  - *session.Session: The authenticated session
  - error: apperr.AuthRequired if the request is not authenticated
*/
func RequiredSession(request *http.Request) (*session.Session, error) {
	sess := ctxutil.GetSession(request.Context())
	if sess == nil {
		return nil, apperr.AuthRequired()
	}

	return sess, nil
}

/*
RequiredUserID returns the User ID of the currently signed-in user.

Returns:
  - string: User UUID
  - error: apperr.AuthRequired if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	sess, err := RequiredSession(request)
	if err != nil {
		return "", err
	}

	return sess.UserID, nil
}

/*
RequiredTenant returns the resolved tenant context for the request.

Returns:
  - *tenant.Context: The tenant identity and partition pool
  - error: apperr.SubdomainRequired if tenant resolution never ran
*/
func RequiredTenant(request *http.Request) (*tenant.Context, error) {
	tc := ctxutil.GetTenant(request.Context())
	if tc == nil {
		return nil, apperr.SubdomainRequired()
	}

	return tc, nil
}
