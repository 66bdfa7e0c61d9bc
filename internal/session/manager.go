// Copyright (c) 2026 Tessera. All rights reserved.

package session

import (
	"context"
	"net/http"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/constants"
	"github.com/tesserahq/tessera/internal/platform/sec"
)

// Manager orchestrates the session lifecycle: issuance at sign-in,
// validation on every authenticated request, and revocation at sign-out.
type Manager struct {
	store Store

	// secureCookies disables the Secure cookie attribute in development so
	// sessions work over plain http://localhost.
	secureCookies bool
}

// NewManager constructs a [Manager] over a session store.
func NewManager(store Store, secureCookies bool) *Manager {
	return &Manager{store: store, secureCookies: secureCookies}
}

// Issue creates a session bound to tenantID, persists it, and sets the
// session cookie on the response.
//
// # Binding
//
// tenantID MUST be the id resolved by the tenant resolver for the sign-in
// request. It is never client-supplied: callers receive it from the request
// context, not from any request payload.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, sess *Session) (string, error) {
	id, err := sec.GenerateSecureToken(constants.SessionIDLength)
	if err != nil {
		return "", apperr.Internal(err)
	}

	if err := m.store.Set(ctx, id, sess, constants.SessionTTL); err != nil {
		return "", err
	}

	http.SetCookie(w, m.cookie(id, int(constants.SessionTTL.Seconds())))
	return id, nil
}

// Validate checks a presented session id against the tenant resolved for the
// current request.
//
// # Checks (in order)
//
//  1. The session exists, otherwise AUTH_REQUIRED.
//  2. It carries a non-empty user identity, otherwise AUTH_REQUIRED.
//  3. Its tenant id equals currentTenantID exactly, otherwise TENANT_MISMATCH.
//
// The tenant comparison is deliberately case-sensitive: tenant ids are
// normalized lower-case at resolution time, so any case difference indicates
// tampering or a smuggled foreign session, never a legitimate client.
func (m *Manager) Validate(ctx context.Context, sessionID, currentTenantID string) (*Session, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.UserID == "" {
		return nil, apperr.AuthRequired()
	}

	if sess.TenantID != currentTenantID {
		return nil, apperr.SessionTenantMismatch()
	}

	return sess, nil
}

// Refresh replaces the stored session record in place, preserving the id
// and the record's remaining TTL. Used when the cached permission snapshot
// goes stale; it must never extend the session's lifetime.
func (m *Manager) Refresh(ctx context.Context, sessionID string, sess *Session) error {
	return m.store.Update(ctx, sessionID, sess)
}

// Revoke clears the stored session and expires the cookie. Revoking an
// unknown session succeeds (logout is idempotent).
func (m *Manager) Revoke(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	if sessionID != "" {
		if err := m.store.Clear(ctx, sessionID); err != nil {
			return err
		}
	}

	http.SetCookie(w, m.cookie("", -1))
	return nil
}

// CookieID extracts the opaque session id from the request cookie.
// Returns "" when no session cookie is present.
func CookieID(r *http.Request) string {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// cookie builds the session cookie. A negative maxAge expires it.
func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
