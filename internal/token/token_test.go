// Copyright (c) 2026 Tessera. All rights reserved.

package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/token"
)

const testSecret = "test-secret-0123456789"

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(testSecret, "tessera.app")
	require.NoError(t, err)
	return issuer
}

/*
TestNewIssuer_RejectsEmptySecret verifies the constructor guard.
*/
func TestNewIssuer_RejectsEmptySecret(t *testing.T) {
	_, err := token.NewIssuer("", "tessera.app")
	require.Error(t, err)
}

/*
TestIssuer_RoundTrip verifies issue/verify with matching tenant and purpose,
and that every token carries a unique id for the single-use ledger.
*/
func TestIssuer_RoundTrip(t *testing.T) {
	issuer := newIssuer(t)

	signed, err := issuer.Issue("user-1", "a@acme.test", "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := issuer.Verify(signed, "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@acme.test", claims.Email)
	assert.Equal(t, "acme", claims.TenantID)
	assert.Equal(t, token.PurposeEmailConfirm, claims.Purpose)
	assert.NotEmpty(t, claims.ID, "token id feeds the single-use ledger")

	// A second token for the same inputs gets a distinct id.
	other, err := issuer.Issue("user-1", "a@acme.test", "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)
	otherClaims, err := issuer.Verify(other, "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

/*
TestIssuer_Verify_TenantMismatch verifies the cross-tenant replay defense: a
token minted under tenant A never redeems under tenant B.
*/
func TestIssuer_Verify_TenantMismatch(t *testing.T) {
	issuer := newIssuer(t)

	signed, err := issuer.Issue("user-1", "a@acme.test", "acme", token.PurposePasswordReset)
	require.NoError(t, err)

	_, err = issuer.Verify(signed, "globex", token.PurposePasswordReset)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "TOKEN_TENANT_MISMATCH"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.HTTPStatus)
}

/*
TestIssuer_Verify_PurposeMismatch verifies that a confirmation token cannot
double as a reset token, and vice versa.
*/
func TestIssuer_Verify_PurposeMismatch(t *testing.T) {
	issuer := newIssuer(t)

	confirm, err := issuer.Issue("user-1", "a@acme.test", "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)

	_, err = issuer.Verify(confirm, "acme", token.PurposePasswordReset)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "INVALID_TOKEN_PURPOSE"))
}

/*
TestIssuer_Verify_CheckOrder verifies that purpose is checked before tenant:
a token wrong on both counts reports the purpose fault.
*/
func TestIssuer_Verify_CheckOrder(t *testing.T) {
	issuer := newIssuer(t)

	signed, err := issuer.Issue("user-1", "a@acme.test", "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)

	_, err = issuer.Verify(signed, "globex", token.PurposePasswordReset)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "INVALID_TOKEN_PURPOSE"))
}

/*
TestIssuer_Verify_BadSignature verifies rejection of tokens signed with a
different secret and of garbage input.
*/
func TestIssuer_Verify_BadSignature(t *testing.T) {
	issuer := newIssuer(t)

	forger, err := token.NewIssuer("another-secret-entirely", "tessera.app")
	require.NoError(t, err)

	forged, err := forger.Issue("user-1", "a@acme.test", "acme", token.PurposeEmailConfirm)
	require.NoError(t, err)

	_, err = issuer.Verify(forged, "acme", token.PurposeEmailConfirm)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "INVALID_TOKEN"))

	_, err = issuer.Verify("not-a-token", "acme", token.PurposeEmailConfirm)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "INVALID_TOKEN"))
}

/*
TestIssuer_Verify_Expired builds an already-expired token with the same
secret and checks for the dedicated expiry code.
*/
func TestIssuer_Verify_Expired(t *testing.T) {
	issuer := newIssuer(t)

	past := time.Now().Add(-2 * time.Hour)
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired-1",
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		UserID:   "user-1",
		TenantID: "acme",
		Purpose:  token.PurposeEmailConfirm,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = issuer.Verify(signed, "acme", token.PurposeEmailConfirm)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "TOKEN_EXPIRED"))
}

/*
TestPurpose_TTL verifies the per-purpose validity windows.
*/
func TestPurpose_TTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, token.PurposeEmailConfirm.TTL())
	assert.Equal(t, time.Hour, token.PurposePasswordReset.TTL())
}
