// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package tenant implements tenant resolution, the first security stage of every
API request.

It determines which customer organization a request belongs to (from the Host
subdomain or an explicit header, depending on deployment mode) and selects the
matching data partition (a dedicated PostgreSQL database per tenant).

Architecture:

  - Context: The per-request resolution result (tenant id + partition handle).
  - Registry: The startup-built map of partition handles, keyed "DB" or "DB_<TENANT>".
  - Resolver: The pure resolution function over (host, header) inputs.

Isolation is physical: a user row in tenant A's partition has no relation to
any row in tenant B's. Everything downstream (sessions, tokens, queries) is
anchored to the tenant id produced here, so resolution fails closed: there is
no "no tenant" success state in multi-tenant mode.
*/
package tenant

import (
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesserahq/tessera/internal/platform/constants"
)

// Context is the per-request, ephemeral result of tenant resolution.
//
// # Lifecycle
//
// Created once per inbound API request, passed through the request context,
// and destroyed at end of request. It is never persisted.
//
// # Invariant
//
// ID is always a normalized (lower-cased) non-empty string, the sentinel
// "default" in single-tenant mode, and Partition is always non-nil.
type Context struct {
	// ID is the normalized tenant identifier (e.g. "acme").
	ID string

	// Partition is the connection pool of this tenant's dedicated database.
	Partition *pgxpool.Pool
}

// Registry holds the partition handles of all configured tenants.
//
// # Concurrency
//
// The registry is built once at startup and is read-only afterwards, so it is
// safe for concurrent use without locking.
type Registry struct {
	partitions map[string]*pgxpool.Pool
}

// NewRegistry creates an empty partition registry.
func NewRegistry() *Registry {
	return &Registry{partitions: make(map[string]*pgxpool.Pool)}
}

// Register binds a partition pool under the registry key for tenantID.
func (r *Registry) Register(tenantID string, pool *pgxpool.Pool) {
	r.partitions[PartitionKey(tenantID)] = pool
}

// Lookup returns the partition pool for a normalized tenant id.
func (r *Registry) Lookup(tenantID string) (*pgxpool.Pool, bool) {
	pool, ok := r.partitions[PartitionKey(tenantID)]
	return pool, ok
}

// Each calls fn for every registered partition. Used at startup for
// per-partition migrations and at shutdown for pool cleanup.
func (r *Registry) Each(fn func(key string, pool *pgxpool.Pool)) {
	for key, pool := range r.partitions {
		fn(key, pool)
	}
}

// PartitionKey derives the registry key for a tenant id.
//
// # Scheme
//
// The sentinel tenant maps to "DB"; every other tenant maps to "DB_" plus the
// upper-cased tenant id (tenant "acme" → key "DB_ACME"). The scheme mirrors
// the environment variables the partitions are configured from.
func PartitionKey(tenantID string) string {
	if tenantID == constants.DefaultTenantID {
		return constants.PartitionKeyDefault
	}
	return constants.PartitionKeyPrefix + strings.ToUpper(tenantID)
}
