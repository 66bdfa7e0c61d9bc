// Copyright (c) 2026 Tessera. All rights reserved.

package tenant

import (
	"net"
	"strings"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/constants"
)

// Mode selects how the resolver treats the multitenancy configuration.
type Mode struct {
	// MultitenancyEnabled switches between single-tenant (sentinel tenant,
	// headers ignored) and multi-tenant resolution.
	MultitenancyEnabled bool

	// BaseDomain is the apex domain tenant subdomains hang off
	// (e.g. "tessera.app" for hosts like "acme.tessera.app").
	BaseDomain string

	// Development relaxes the subdomain requirement: when no subdomain is
	// extractable, the explicit tenant header is accepted as a fallback.
	// Production never falls back.
	Development bool
}

// Resolver turns raw request metadata into a [Context].
//
// # Design
//
// All configuration is injected at construction time; the resolver performs
// no ambient config lookups, which keeps resolution deterministic and unit
// testable with injected modes and registries.
type Resolver struct {
	mode     Mode
	registry *Registry
}

// NewResolver constructs a [Resolver] over an explicit mode and registry.
func NewResolver(mode Mode, registry *Registry) *Resolver {
	return &Resolver{mode: mode, registry: registry}
}

// Resolve determines the tenant for a request from its Host header and
// optional explicit tenant header.
//
// # Rules
//
//   - Single-tenant mode: always the sentinel tenant; any tenant header is
//     ignored. Fails only if the default partition is unregistered.
//   - Multi-tenant, production: a single-level subdomain of the base domain
//     is mandatory. A tenant header, if present, must confirm it
//     (case-insensitively) or the request is rejected.
//   - Multi-tenant, development: the subdomain is preferred; the header is a
//     fallback when no subdomain is extractable. When both are present they
//     must agree.
//
// # Failure
//
// Resolution fails closed. Mismatches and missing subdomains are client
// faults (403); a resolved tenant without a registered partition is a fatal
// configuration error (500), distinct so operators can tell them apart.
func (r *Resolver) Resolve(host, tenantHeader string) (*Context, error) {
	if !r.mode.MultitenancyEnabled {
		return r.contextFor(constants.DefaultTenantID)
	}

	subdomain := ExtractSubdomain(host, r.mode.BaseDomain)
	header := strings.ToLower(strings.TrimSpace(tenantHeader))

	// Subdomain present: authoritative in both environments. The header may
	// only confirm it, never override it.
	if subdomain != "" {
		if header != "" && header != subdomain {
			return nil, apperr.TenantMismatch()
		}
		return r.contextFor(subdomain)
	}

	// No subdomain. Production rejects outright, regardless of header.
	if !r.mode.Development {
		return nil, apperr.SubdomainRequired()
	}

	// Development fallback: accept the explicit header.
	if header != "" {
		return r.contextFor(header)
	}

	return nil, apperr.TenantRequired()
}

// contextFor builds the resolution result, failing closed when the tenant has
// no partition bound in the registry.
func (r *Resolver) contextFor(tenantID string) (*Context, error) {
	pool, ok := r.registry.Lookup(tenantID)
	if !ok {
		return nil, apperr.TenantNotConfigured(tenantID)
	}

	return &Context{ID: tenantID, Partition: pool}, nil
}

// ExtractSubdomain returns the single-level subdomain of host relative to
// baseDomain, or "" when none can be extracted.
//
// # Algorithm
//
//  1. Strip any port suffix from the host.
//  2. The remainder must equal exactly "<label>.<baseDomain>" for one
//     non-empty label containing no further dots.
//
// The bare base domain, multi-level prefixes ("a.b.tessera.app"), and
// unrelated domains all yield "". Comparison is case-insensitive and the
// returned label is lower-cased.
func ExtractSubdomain(host, baseDomain string) string {
	if host == "" || baseDomain == "" {
		return ""
	}

	// Strip the port, tolerating hosts without one.
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	host = strings.ToLower(host)
	baseDomain = strings.ToLower(baseDomain)

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	label := strings.TrimSuffix(host, suffix)
	if label == "" || strings.Contains(label, ".") {
		return ""
	}

	return label
}
