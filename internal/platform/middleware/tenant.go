// Copyright (c) 2026 Tessera. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/tesserahq/tessera/internal/platform/constants"
	"github.com/tesserahq/tessera/internal/platform/ctxutil"
	"github.com/tesserahq/tessera/internal/platform/respond"
	"github.com/tesserahq/tessera/internal/tenant"
)

// ResolveTenant runs tenant resolution as the first security stage of the
// API pipeline.
//
// # Flow
//
//  1. Requests outside the API path prefix bypass resolution entirely.
//  2. The resolver maps (Host, X-Tenant-ID) to a [*tenant.Context].
//  3. On success the context is injected for all downstream stages; on
//     failure the request is rejected immediately; no business logic runs
//     without a proven tenant binding.
//
// # Ordering
//
// Must be registered BEFORE session validation: the session validator
// compares the session's embedded tenant against the context injected here
// and fails closed when it is absent.
func ResolveTenant(resolver *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Scope Check ────────────────────────────────────────────────
			if !strings.HasPrefix(request.URL.Path, constants.APIPathPrefix) {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Resolution ─────────────────────────────────────────────────
			tc, err := resolver.Resolve(request.Host, request.Header.Get(constants.HeaderXTenantID))
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithTenant(request.Context(), tc)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
