// Copyright (c) 2026 Tessera. All rights reserved.

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesserahq/tessera/internal/platform/middleware"
)

// corsConfig satisfies [middleware.AppConfig] for tests.
type corsConfig struct {
	development bool
}

func (c corsConfig) IsDevelopment() bool { return c.development }

/*
TestCORS_ProductionOriginAllowList verifies that production only reflects
origins on the base domain or its subdomains. Origins whose hostname merely
ends in the base domain string must not qualify.
*/
func TestCORS_ProductionOriginAllowList(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"tenant_subdomain", "https://acme.tessera.app", true},
		{"nested_subdomain", "https://app.acme.tessera.app", true},
		{"bare_base_domain", "https://tessera.app", true},
		{"uppercase_host", "https://ACME.TESSERA.APP", true},
		{"lookalike_domain", "https://eviltessera.app", false},
		{"lookalike_subdomain", "https://acme.eviltessera.app", false},
		{"unrelated_domain", "https://example.com", false},
		{"base_domain_as_prefix", "https://tessera.app.evil.com", false},
		{"unparseable_origin", "tessera.app", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(corsConfig{development: false}, "tessera.app")(
				http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
					writer.WriteHeader(http.StatusOK)
				}),
			)

			request := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			allowOrigin := recorder.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed {
				assert.Equal(t, tt.origin, allowOrigin)
			} else {
				assert.Empty(t, allowOrigin)
			}
		})
	}
}

/*
TestCORS_DevelopmentAllowsAnyOrigin verifies the permissive development mode
used when the SPA runs from a local dev server.
*/
func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	handler := middleware.CORS(corsConfig{development: true}, "tessera.app")(
		http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}),
	)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestCORS_Preflight verifies that OPTIONS requests short-circuit with 204 and
never reach the inner handler.
*/
func TestCORS_Preflight(t *testing.T) {
	handlerRan := false
	handler := middleware.CORS(corsConfig{development: false}, "tessera.app")(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { handlerRan = true }),
	)

	request := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	request.Header.Set("Origin", "https://acme.tessera.app")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, handlerRan)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://acme.tessera.app", recorder.Header().Get("Access-Control-Allow-Origin"))
}
