// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Tenancy: Sentinel tenant id, partition registry key scheme, tenant header.
  - Security: Session cookie configuration and token lifetimes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "tessera-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Tenancy

const (
	// DefaultTenantID is the sentinel tenant id used when multitenancy is disabled.
	DefaultTenantID = "default"

	// HeaderXTenantID carries an explicit tenant id on inbound requests.
	// In production it may only confirm the subdomain, never replace it.
	HeaderXTenantID = "X-Tenant-ID"

	// PartitionKeyDefault is the registry key of the single-tenant partition.
	PartitionKeyDefault = "DB"

	// PartitionKeyPrefix prefixes the upper-cased tenant id to form the
	// registry key of a tenant partition (e.g. "DB_ACME" for tenant "acme").
	PartitionKeyPrefix = "DB_"

	// APIPathPrefix is the only path subtree subject to tenant resolution.
	// Requests outside it (health probes, static assets) bypass the resolver.
	APIPathPrefix = "/api/"
)

// # Authentication

const (
	// TokenIssuer is the standard 'iss' claim in tenant-bound JWTs.
	TokenIssuer = "tessera.app"

	// SessionCookieName is the name of the cookie carrying the opaque session id.
	SessionCookieName = "tessera_session"

	// SessionTTL is how long an issued session remains valid without re-authentication.
	SessionTTL = 7 * 24 * time.Hour

	// SessionIDLength is the byte length of the random session identifier.
	SessionIDLength = 32

	// EmailConfirmTokenTTL is the validity window of an email confirmation token.
	// Long-lived (24 hours) as users might not check email immediately.
	EmailConfirmTokenTTL = 24 * time.Hour

	// PasswordResetTokenTTL is the validity window of a password reset token.
	// Short-lived (1 hour) because password reset is more security-sensitive.
	PasswordResetTokenTTL = 1 * time.Hour
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Request Correlation

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession       = "session:"
	RedisPrefixPermVersion   = "rbac:permver:"
	RedisPrefixConsumedToken = "token:consumed:"
)
