// Copyright (c) 2026 Tessera. All rights reserved.

/*
Package token implements tenant-bound, purpose-tagged signed tokens for
out-of-band auth flows (email confirmation, password reset).

Every token embeds the tenant id resolved when it was minted and a purpose
tag naming the one flow it may be redeemed in. Verification re-checks both
against the current request, so a token minted under tenant A can never be
redeemed under tenant B, and a confirmation token can never double as a
reset token, even when the bearer is otherwise legitimate.

Architecture:

  - Issuer: HMAC-signed JWT creation and verification over a server secret.
  - Ledger: Redis-backed single-use enforcement keyed by token id.
*/
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/constants"
	"github.com/tesserahq/tessera/pkg/uuidv7"
)

// Purpose tags the single flow a token may be redeemed in.
type Purpose string

const (
	// PurposeEmailConfirm marks tokens redeemable only at the sign-up
	// confirmation endpoint. Valid for 24 hours.
	PurposeEmailConfirm Purpose = "email-confirm"

	// PurposePasswordReset marks tokens redeemable only at the password
	// reset endpoint. Valid for 1 hour, shorter because password reset is
	// more security-sensitive.
	PurposePasswordReset Purpose = "password-reset"
)

// TTL returns the validity window for tokens of this purpose.
func (p Purpose) TTL() time.Duration {
	if p == PurposePasswordReset {
		return constants.PasswordResetTokenTTL
	}
	return constants.EmailConfirmTokenTTL
}

// Claims is the payload embedded inside a tenant-bound token.
//
// Custom application claims are abbreviated to keep the token compact in
// email links.
type Claims struct {
	jwt.RegisteredClaims

	UserID   string  `json:"uid"`
	Email    string  `json:"eml"`
	TenantID string  `json:"tid"`
	Purpose  Purpose `json:"pur"`
}

// Issuer creates and verifies tenant-bound tokens using HS256 over a
// server-held secret. Possession of a token without the secret proves
// nothing; forging one requires the secret.
type Issuer struct {
	secret []byte
	issuer string
}

// NewIssuer constructs an [Issuer]. The secret must be non-empty; an
// unsigned token scheme has no place here.
func NewIssuer(secret, issuer string) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token: signing secret must not be empty")
	}

	return &Issuer{secret: []byte(secret), issuer: issuer}, nil
}

// Issue mints a signed token for the given user, bound to tenantID and
// purpose, expiring after the purpose's TTL.
//
// # Binding
//
// tenantID MUST be the id resolved by the tenant resolver for the issuing
// request, never client input.
func (i *Issuer) Issue(userID, email, tenantID string, purpose Purpose) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuidv7.New(),
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(purpose.TTL())),
		},
		UserID:   userID,
		Email:    email,
		TenantID: tenantID,
		Purpose:  purpose,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: failed to sign: %w", err)
	}

	return signed, nil
}

// Verify checks a token string against the current request context.
//
// # Checks (in order)
//
//  1. Signature validity and non-expiry: INVALID_TOKEN or TOKEN_EXPIRED.
//  2. The purpose tag equals expectedPurpose: INVALID_TOKEN_PURPOSE.
//  3. The embedded tenant equals currentTenantID: TOKEN_TENANT_MISMATCH.
//     This is the cross-tenant replay defense: a token minted while
//     resolving tenant A is unredeemable under tenant B's context.
//
// Single-use enforcement is separate, see [Ledger.Consume].
func (i *Issuer) Verify(tokenString, currentTenantID string, expectedPurpose Purpose) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired()
		}
		return nil, apperr.InvalidToken()
	}

	if !parsed.Valid {
		return nil, apperr.InvalidToken()
	}

	if claims.Purpose != expectedPurpose {
		return nil, apperr.InvalidTokenPurpose()
	}

	if claims.TenantID != currentTenantID {
		return nil, apperr.TokenTenantMismatch()
	}

	return claims, nil
}
