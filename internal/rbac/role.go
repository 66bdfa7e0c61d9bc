// Copyright (c) 2026 Tessera. All rights reserved.

package rbac

import "time"

// Role is a named bundle of permission codes, assignable to users within a
// tenant partition.
//
// # Rules
//   - Name is unique within the partition.
//   - Permissions is a JSON array of codes passing [ValidCode].
//   - Inactive or soft-deleted roles contribute nothing to aggregation.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PermissionDefinition is a registry entry describing a known permission code.
//
// # Scope
//
// Registry entries exist for role-grant validation and admin display. They
// are never consulted during a runtime authorization decision; the granted
// codes on the user's roles are the sole source of truth there.
type PermissionDefinition struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// # Resource Roles

// ResourceRole is a per-resource access level (e.g. a user's role on one
// project), ordered in a fixed numeric hierarchy.
type ResourceRole string

const (
	ResourceRoleOwner  ResourceRole = "owner"  // Full control including deletion.
	ResourceRoleAdmin  ResourceRole = "admin"  // Manage members and settings.
	ResourceRoleMember ResourceRole = "member" // Contribute content.
	ResourceRoleViewer ResourceRole = "viewer" // Read-only access.
)

// level maps a resource role to its rank in the hierarchy.
func (r ResourceRole) level() int {
	switch r {
	case ResourceRoleOwner:
		return 4
	case ResourceRoleAdmin:
		return 3
	case ResourceRoleMember:
		return 2
	case ResourceRoleViewer:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the defined resource roles.
func (r ResourceRole) Valid() bool {
	return r.level() > 0
}

// AtLeast checks if the role meets or exceeds the required target role.
func (r ResourceRole) AtLeast(target ResourceRole) bool {
	return r.level() >= target.level()
}

// CanAssign reports whether a holder of r may grant target to another user.
//
// # Escalation Defense
//
// Grants are restricted to roles STRICTLY below the grantor's own: a project
// admin can add members and viewers but can neither mint another admin nor
// an owner. This closes the privilege-escalation path through invitations.
func (r ResourceRole) CanAssign(target ResourceRole) bool {
	return target.Valid() && r.level() > target.level()
}
