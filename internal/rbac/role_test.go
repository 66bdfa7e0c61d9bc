// Copyright (c) 2026 Tessera. All rights reserved.

package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesserahq/tessera/internal/rbac"
)

/*
TestResourceRole_Valid verifies recognition of the four hierarchy levels.
*/
func TestResourceRole_Valid(t *testing.T) {
	assert.True(t, rbac.ResourceRoleOwner.Valid())
	assert.True(t, rbac.ResourceRoleAdmin.Valid())
	assert.True(t, rbac.ResourceRoleMember.Valid())
	assert.True(t, rbac.ResourceRoleViewer.Valid())

	assert.False(t, rbac.ResourceRole("superuser").Valid())
	assert.False(t, rbac.ResourceRole("").Valid())
}

/*
TestResourceRole_AtLeast covers the ordering owner > admin > member > viewer.
*/
func TestResourceRole_AtLeast(t *testing.T) {
	assert.True(t, rbac.ResourceRoleOwner.AtLeast(rbac.ResourceRoleAdmin))
	assert.True(t, rbac.ResourceRoleAdmin.AtLeast(rbac.ResourceRoleAdmin))
	assert.True(t, rbac.ResourceRoleMember.AtLeast(rbac.ResourceRoleViewer))

	assert.False(t, rbac.ResourceRoleViewer.AtLeast(rbac.ResourceRoleMember))
	assert.False(t, rbac.ResourceRoleAdmin.AtLeast(rbac.ResourceRoleOwner))
	assert.False(t, rbac.ResourceRole("").AtLeast(rbac.ResourceRoleViewer))
}

/*
TestResourceRole_CanAssign verifies that assignment reaches strictly below
the actor's own level: nobody can mint a peer.
*/
func TestResourceRole_CanAssign(t *testing.T) {
	tests := []struct {
		name   string
		actor  rbac.ResourceRole
		target rbac.ResourceRole
		want   bool
	}{
		{"owner_assigns_admin", rbac.ResourceRoleOwner, rbac.ResourceRoleAdmin, true},
		{"owner_assigns_viewer", rbac.ResourceRoleOwner, rbac.ResourceRoleViewer, true},
		{"owner_cannot_mint_owner", rbac.ResourceRoleOwner, rbac.ResourceRoleOwner, false},
		{"admin_assigns_member", rbac.ResourceRoleAdmin, rbac.ResourceRoleMember, true},
		{"admin_cannot_mint_admin", rbac.ResourceRoleAdmin, rbac.ResourceRoleAdmin, false},
		{"admin_cannot_mint_owner", rbac.ResourceRoleAdmin, rbac.ResourceRoleOwner, false},
		{"member_cannot_assign", rbac.ResourceRoleMember, rbac.ResourceRoleViewer, true},
		{"viewer_assigns_nothing", rbac.ResourceRoleViewer, rbac.ResourceRoleViewer, false},
		{"non_member_assigns_nothing", rbac.ResourceRole(""), rbac.ResourceRoleViewer, false},
		{"invalid_target", rbac.ResourceRoleOwner, rbac.ResourceRole("root"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.CanAssign(tt.target))
		})
	}
}
