// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package session implements tenant-bound server-side sessions.

A session is created at sign-in, stored in Redis under an opaque random id
delivered as an HTTP cookie, and carries the tenant id resolved for the
sign-in request. On every subsequent request the embedded tenant id must
equal the tenant resolved for that request: a session minted under tenant A
is rejected wholesale when presented under tenant B.

Architecture:

  - Session: The stored record (user, tenant binding, cached permissions).
  - Store: Abstract get/set/clear keyed by the opaque session id.
  - Manager: Cookie handling plus issuance/revocation orchestration.

The tenant binding is the core invariant: the only way to change a session's
tenant is to obtain a new session.
*/
package session

import "time"

// Session is the server-side record of an authenticated browser session.
//
// # Invariant
//
// TenantID is set once at issuance, from the tenant resolved for the sign-in
// request and never from client input, and is immutable for the session's life.
type Session struct {
	// UserID identifies the account within the tenant's partition.
	UserID string `json:"user_id"`

	// TenantID is the tenant the session was issued under.
	TenantID string `json:"tenant_id"`

	// Permissions is the snapshot of the user's aggregated permission codes,
	// cached to avoid a role join on every authorization check.
	Permissions []string `json:"permissions"`

	// PermissionVersion is the version the snapshot was taken at. When the
	// user's roles change the version is bumped and the snapshot refreshed
	// on the next permission check.
	PermissionVersion int64 `json:"permission_version"`

	// IssuedAt is the issuance time in epoch milliseconds.
	IssuedAt int64 `json:"issued_at"`
}

// New constructs a session bound to the given tenant at the current time.
func New(userID, tenantID string, permissions []string, permissionVersion int64) *Session {
	return &Session{
		UserID:            userID,
		TenantID:          tenantID,
		Permissions:       permissions,
		PermissionVersion: permissionVersion,
		IssuedAt:          time.Now().UnixMilli(),
	}
}
