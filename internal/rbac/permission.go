// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package rbac implements role-based access control: permission aggregation
across a user's roles and wildcard-aware containment checks.

Permission codes follow a "category:action" grammar. A role may grant exact
codes ("users:create"), a category wildcard ("users:*"), or the super
wildcard ("*"). The registry of known codes is metadata for validation and
admin display only; runtime authorization decisions never join it.

The resolver is consumed by the session layer (which caches a permission
snapshot per session) and by the guard helpers at the top of privileged
operations.
*/
package rbac

import "strings"

// SuperWildcard grants every permission.
const SuperWildcard = "*"

// Set is an aggregated collection of granted permission codes.
type Set map[string]struct{}

// NewSet builds a [Set] from a slice of permission codes.
func NewSet(codes []string) Set {
	set := make(Set, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Slice returns the codes in the set. Order is unspecified.
func (s Set) Slice() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	return codes
}

// Has reports whether the set grants the requested permission.
//
// # Matching Rules
//
//  1. The super wildcard "*" grants everything.
//  2. A verbatim entry grants exactly itself.
//  3. "<category>:*" grants any code whose category (the substring before
//     the first colon) matches.
//
// No deeper nesting is supported: "a:b:*" only matches codes whose category
// is literally "a". The grammar is two-level only.
func (s Set) Has(requested string) bool {
	if _, ok := s[SuperWildcard]; ok {
		return true
	}

	if _, ok := s[requested]; ok {
		return true
	}

	if idx := strings.Index(requested, ":"); idx > 0 {
		if _, ok := s[requested[:idx]+":*"]; ok {
			return true
		}
	}

	return false
}

// ValidCode reports whether a code is grammatically acceptable for a role
// grant: the super wildcard, a category wildcard, or a "category:action"
// pair with non-empty halves.
func ValidCode(code string) bool {
	if code == SuperWildcard {
		return true
	}

	category, action, found := strings.Cut(code, ":")
	return found && category != "" && action != ""
}
