// Copyright (c) 2026 Tessera. All rights reserved.

package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/tenant"
)

// registryFor builds a registry with nil pools bound for the given tenants.
// Resolution only inspects registry membership, so nil pools are fine here.
func registryFor(tenantIDs ...string) *tenant.Registry {
	registry := tenant.NewRegistry()
	for _, id := range tenantIDs {
		registry.Register(id, nil)
	}
	return registry
}

/*
TestExtractSubdomain covers the host parsing rules: exactly one label in
front of the base domain, ports stripped, case folded.
*/
func TestExtractSubdomain(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"simple_subdomain", "acme.tessera.app", "acme"},
		{"with_port", "acme.tessera.app:8080", "acme"},
		{"mixed_case", "ACME.Tessera.App", "acme"},
		{"bare_base_domain", "tessera.app", ""},
		{"base_domain_with_port", "tessera.app:443", ""},
		{"multi_level_prefix", "a.b.tessera.app", ""},
		{"unrelated_domain", "acme.example.com", ""},
		{"suffix_without_dot", "eviltessera.app", ""},
		{"empty_host", "", ""},
		{"localhost", "localhost:3000", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tenant.ExtractSubdomain(tt.host, "tessera.app"))
		})
	}
}

/*
TestResolver_SingleTenant verifies that with multitenancy disabled every
request resolves to the sentinel tenant, no matter what the client sends.
*/
func TestResolver_SingleTenant(t *testing.T) {
	resolver := tenant.NewResolver(tenant.Mode{
		MultitenancyEnabled: false,
		BaseDomain:          "tessera.app",
	}, registryFor("default"))

	tests := []struct {
		name   string
		host   string
		header string
	}{
		{"plain_host", "api.internal:8080", ""},
		{"header_ignored", "tessera.app", "acme"},
		{"subdomain_ignored", "acme.tessera.app", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := resolver.Resolve(tt.host, tt.header)
			require.NoError(t, err)
			assert.Equal(t, "default", tc.ID)
		})
	}
}

/*
TestResolver_SingleTenant_Unconfigured verifies the fail-closed path when the
default partition was never registered.
*/
func TestResolver_SingleTenant_Unconfigured(t *testing.T) {
	resolver := tenant.NewResolver(tenant.Mode{MultitenancyEnabled: false}, tenant.NewRegistry())

	_, err := resolver.Resolve("tessera.app", "")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "TENANT_NOT_CONFIGURED"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 500, ae.HTTPStatus)
}

/*
TestResolver_Subdomain verifies the authoritative subdomain path, including
the header-confirmation rule.
*/
func TestResolver_Subdomain(t *testing.T) {
	resolver := tenant.NewResolver(tenant.Mode{
		MultitenancyEnabled: true,
		BaseDomain:          "tessera.app",
	}, registryFor("acme", "globex"))

	t.Run("subdomain_only", func(t *testing.T) {
		tc, err := resolver.Resolve("acme.tessera.app", "")
		require.NoError(t, err)
		assert.Equal(t, "acme", tc.ID)
	})

	t.Run("header_confirms_subdomain", func(t *testing.T) {
		tc, err := resolver.Resolve("acme.tessera.app", "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", tc.ID)
	})

	t.Run("header_confirmation_is_case_insensitive", func(t *testing.T) {
		tc, err := resolver.Resolve("acme.tessera.app", "ACME")
		require.NoError(t, err)
		assert.Equal(t, "acme", tc.ID)
	})

	t.Run("header_cannot_override_subdomain", func(t *testing.T) {
		_, err := resolver.Resolve("acme.tessera.app", "globex")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "TENANT_MISMATCH"))

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 403, ae.HTTPStatus)
	})

	t.Run("unregistered_tenant_is_config_error", func(t *testing.T) {
		_, err := resolver.Resolve("initech.tessera.app", "")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "TENANT_NOT_CONFIGURED"))
	})
}

/*
TestResolver_Production_RequiresSubdomain verifies that production never
falls back to the tenant header: a host without a subdomain is rejected even
when a header names a perfectly valid tenant.
*/
func TestResolver_Production_RequiresSubdomain(t *testing.T) {
	resolver := tenant.NewResolver(tenant.Mode{
		MultitenancyEnabled: true,
		BaseDomain:          "tessera.app",
		Development:         false,
	}, registryFor("acme"))

	tests := []struct {
		name   string
		host   string
		header string
	}{
		{"bare_base_domain", "tessera.app", ""},
		{"header_is_not_a_fallback", "tessera.app", "acme"},
		{"unrelated_host", "internal-lb.example.com", "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.host, tt.header)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, "SUBDOMAIN_REQUIRED"))
		})
	}
}

/*
TestResolver_Development_HeaderFallback verifies the relaxed development
rules: header accepted when no subdomain is extractable, and rejection when
neither source names a tenant.
*/
func TestResolver_Development_HeaderFallback(t *testing.T) {
	resolver := tenant.NewResolver(tenant.Mode{
		MultitenancyEnabled: true,
		BaseDomain:          "tessera.app",
		Development:         true,
	}, registryFor("acme", "globex"))

	t.Run("header_fallback_on_localhost", func(t *testing.T) {
		tc, err := resolver.Resolve("localhost:8080", "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", tc.ID)
	})

	t.Run("header_normalized_to_lowercase", func(t *testing.T) {
		tc, err := resolver.Resolve("localhost:8080", "  GLOBEX  ")
		require.NoError(t, err)
		assert.Equal(t, "globex", tc.ID)
	})

	t.Run("subdomain_still_authoritative", func(t *testing.T) {
		_, err := resolver.Resolve("acme.tessera.app", "globex")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "TENANT_MISMATCH"))
	})

	t.Run("neither_source_present", func(t *testing.T) {
		_, err := resolver.Resolve("localhost:8080", "")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "TENANT_REQUIRED"))
	})
}

/*
TestPartitionKey verifies the env-style registry key scheme.
*/
func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "DB", tenant.PartitionKey("default"))
	assert.Equal(t, "DB_ACME", tenant.PartitionKey("acme"))
	assert.Equal(t, "DB_GLOBEX", tenant.PartitionKey("globex"))
}
