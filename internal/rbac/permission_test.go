// Copyright (c) 2026 Tessera. All rights reserved.

package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesserahq/tessera/internal/rbac"
)

/*
TestSet_Has covers the three matching rules: super wildcard, verbatim, and
category wildcard.
*/
func TestSet_Has(t *testing.T) {
	tests := []struct {
		name      string
		granted   []string
		requested string
		want      bool
	}{
		{"super_wildcard_grants_everything", []string{"*"}, "users:delete", true},
		{"super_wildcard_grants_weird_codes", []string{"*"}, "anything-at-all", true},
		{"verbatim_match", []string{"users:create"}, "users:create", true},
		{"verbatim_no_match", []string{"users:create"}, "users:delete", false},
		{"category_wildcard_match", []string{"users:*"}, "users:delete", true},
		{"category_wildcard_other_category", []string{"users:*"}, "projects:view", false},
		{"wildcard_is_not_a_prefix_match", []string{"users:*"}, "users2:create", false},
		{"no_nested_wildcards", []string{"a:*"}, "a:b:c", true},
		{"nested_category_not_matched", []string{"a:b:*"}, "a:b:c", false},
		{"empty_set", nil, "users:create", false},
		{"empty_request", []string{"users:*"}, "", false},
		{"multiple_grants", []string{"projects:view", "users:*"}, "users:update", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := rbac.NewSet(tt.granted)
			assert.Equal(t, tt.want, set.Has(tt.requested))
		})
	}
}

/*
TestValidCode checks the grant grammar: "category:action", "category:*",
or the lone super wildcard.
*/
func TestValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"*", true},
		{"users:create", true},
		{"users:*", true},
		{"users", false},
		{"", false},
		{":action", false},
		{"category:", false},
		{":", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.ValidCode(tt.code))
		})
	}
}

/*
TestSet_Slice verifies round-tripping codes through a set.
*/
func TestSet_Slice(t *testing.T) {
	set := rbac.NewSet([]string{"a:b", "c:*", "a:b"})
	assert.Len(t, set.Slice(), 2)
	assert.ElementsMatch(t, []string{"a:b", "c:*"}, set.Slice())
}
