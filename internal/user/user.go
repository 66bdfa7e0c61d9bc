// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package user implements account lifecycle and sign-in for tenant members.

It covers registration with email confirmation, password sign-in that mints a
tenant-bound session, and the forgot-password flow. Every operation runs
against the partition resolved for the current request; an account exists
only within its tenant's partition.

# Architecture

  - Service: Orchestrates business logic (Register, Login, password reset).
  - Store: Abstracted Postgres access, parameterized by partition pool.
  - Tokens: Out-of-band flows ride on tenant-bound single-use tokens.
*/
package user

import "time"

// # Domain Entities

// User represents a registered member of a tenant.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string    `json:"display_name"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can sign in with a password.
// Accounts provisioned through an external identity provider have none.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
