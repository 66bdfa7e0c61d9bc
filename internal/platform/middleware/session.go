// Copyright (c) 2026 Tessera. All rights reserved.

package middleware

import (
	"errors"
	"net/http"

	"github.com/tesserahq/tessera/internal/platform/ctxutil"
	"github.com/tesserahq/tessera/internal/platform/respond"
	"github.com/tesserahq/tessera/internal/session"
)

// RequireSession blocks requests without a session validly bound to the
// resolved tenant.
//
// # Usage
//
// Mounted on the authenticated route group only. Public routes (health,
// sign-up, sign-in, email confirmation, password reset, the session
// introspection prefix) are mounted outside this group, which is the router
// equivalent of an allow-list.
//
// # Flow
//
//  1. The tenant context injected by [ResolveTenant] must be present; its
//     absence is a pipeline wiring fault and fails closed as a server error,
//     never as implicit acceptance.
//  2. The session cookie is validated by [session.Manager.Validate]:
//     missing/expired/identity-less sessions yield AUTH_REQUIRED, a tenant
//     binding mismatch yields the distinct TENANT_MISMATCH.
//  3. On success the session and its id are injected for downstream
//     handlers and the permission resolver.
func RequireSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Ordering Dependency ────────────────────────────────────────
			tc := ctxutil.GetTenant(request.Context())
			if tc == nil {
				respond.Error(writer, request, errors.New("session validation before tenant resolution"))
				return
			}

			// ── 2. Session Binding Validation ─────────────────────────────────
			sessionID := session.CookieID(request)
			sess, err := manager.Validate(request.Context(), sessionID, tc.ID)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithSession(request.Context(), sessionID, sess)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
