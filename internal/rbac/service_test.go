// Copyright (c) 2026 Tessera. All rights reserved.

package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/ctxutil"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
)

// # Test Fakes

type fakeStore struct {
	permissions map[string][]string
	roles       map[string]*rbac.Role
	definitions []rbac.PermissionDefinition
	assignments map[string][]string // userID -> roleIDs
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		permissions: make(map[string][]string),
		roles:       make(map[string]*rbac.Role),
		assignments: make(map[string][]string),
	}
}

func (f *fakeStore) UserPermissions(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, error) {
	return f.permissions[userID], nil
}

func (f *fakeStore) CreateRole(ctx context.Context, db *pgxpool.Pool, role *rbac.Role) error {
	f.roles[role.ID] = role
	return nil
}

func (f *fakeStore) ListRoles(ctx context.Context, db *pgxpool.Pool) ([]rbac.Role, error) {
	roles := make([]rbac.Role, 0, len(f.roles))
	for _, role := range f.roles {
		roles = append(roles, *role)
	}
	return roles, nil
}

func (f *fakeStore) FindRole(ctx context.Context, db *pgxpool.Pool, roleID string) (*rbac.Role, error) {
	role, ok := f.roles[roleID]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return role, nil
}

func (f *fakeStore) AssignRole(ctx context.Context, db *pgxpool.Pool, userID, roleID string) error {
	f.assignments[userID] = append(f.assignments[userID], roleID)
	return nil
}

func (f *fakeStore) RevokeRole(ctx context.Context, db *pgxpool.Pool, userID, roleID string) error {
	kept := f.assignments[userID][:0]
	for _, id := range f.assignments[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	f.assignments[userID] = kept
	return nil
}

func (f *fakeStore) ListDefinitions(ctx context.Context, db *pgxpool.Pool) ([]rbac.PermissionDefinition, error) {
	return f.definitions, nil
}

type fakeVersions struct {
	mu       sync.Mutex
	versions map[string]int64
}

func newFakeVersions() *fakeVersions {
	return &fakeVersions{versions: make(map[string]int64)}
}

func (f *fakeVersions) Current(ctx context.Context, tenantID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versions[tenantID+":"+userID], nil
}

func (f *fakeVersions) Bump(ctx context.Context, tenantID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[tenantID+":"+userID]++
	return f.versions[tenantID+":"+userID], nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*session.Session)}
}

func (s *fakeSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperr.AuthRequired()
	}
	copied := *sess
	return &copied, nil
}

func (s *fakeSessionStore) Set(ctx context.Context, id string, sess *session.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[id] = &copied
	return nil
}

func (s *fakeSessionStore) Update(ctx context.Context, id string, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		copied := *sess
		s.sessions[id] = &copied
	}
	return nil
}

func (s *fakeSessionStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// # Helpers

// requestWith builds a request whose context carries a resolved tenant and
// an authenticated session, the way the middleware pipeline would.
func requestWith(sessionID string, sess *session.Session) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	ctx := ctxutil.WithTenant(request.Context(), &tenant.Context{ID: sess.TenantID})
	ctx = ctxutil.WithSession(ctx, sessionID, sess)
	return request.WithContext(ctx)
}

/*
TestService_Require_Grants verifies the three grant shapes through the
request-level guard.
*/
func TestService_Require_Grants(t *testing.T) {
	tests := []struct {
		name    string
		granted []string
		code    string
		allowed bool
	}{
		{"verbatim", []string{"projects:view"}, "projects:view", true},
		{"category_wildcard", []string{"projects:*"}, "projects:create", true},
		{"super_wildcard", []string{"*"}, "roles:manage", true},
		{"denied", []string{"projects:view"}, "projects:create", false},
		{"empty_grants", nil, "projects:view", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := rbac.NewService(newFakeStore(), newFakeVersions(),
				session.NewManager(newFakeSessionStore(), false))

			sess := session.New("user-1", "acme", tt.granted, 0)
			err := service.Require(requestWith("sid-1", sess), tt.code)

			if tt.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, "PERMISSION_DENIED"))
			}
		})
	}
}

/*
TestService_Require_NoSession verifies the guard fails closed without an
authenticated session.
*/
func TestService_Require_NoSession(t *testing.T) {
	service := rbac.NewService(newFakeStore(), newFakeVersions(),
		session.NewManager(newFakeSessionStore(), false))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	request = request.WithContext(ctxutil.WithTenant(request.Context(), &tenant.Context{ID: "acme"}))

	err := service.Require(request, "projects:view")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "AUTH_REQUIRED"))
}

/*
TestService_Require_RefreshesStaleSnapshot verifies that a bumped version
triggers a re-read from the partition and persists the refreshed snapshot,
so role changes apply without re-authentication.
*/
func TestService_Require_RefreshesStaleSnapshot(t *testing.T) {
	store := newFakeStore()
	versions := newFakeVersions()
	sessionStore := newFakeSessionStore()
	manager := session.NewManager(sessionStore, false)
	service := rbac.NewService(store, versions, manager)

	// Session snapshot from sign-in: no permissions, version 0.
	sess := session.New("user-1", "acme", nil, 0)
	require.NoError(t, sessionStore.Set(context.Background(), "sid-1", sess, time.Hour))

	// An admin granted a role since: live data moved ahead of the snapshot.
	store.permissions["user-1"] = []string{"projects:view"}
	_, err := versions.Bump(context.Background(), "acme", "user-1")
	require.NoError(t, err)

	err = service.Require(requestWith("sid-1", sess), "projects:view")
	assert.NoError(t, err)

	// The refreshed snapshot was written back to the session store.
	stored, err := sessionStore.Get(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.PermissionVersion)
	assert.Contains(t, stored.Permissions, "projects:view")
}

/*
TestService_Require_FreshSnapshotSkipsRefresh verifies no store round trip
happens when the snapshot version is current.
*/
func TestService_Require_FreshSnapshotSkipsRefresh(t *testing.T) {
	store := newFakeStore()
	service := rbac.NewService(store, newFakeVersions(),
		session.NewManager(newFakeSessionStore(), false))

	// Store would deny if consulted; the cached grant must win.
	store.permissions["user-1"] = nil

	sess := session.New("user-1", "acme", []string{"projects:view"}, 0)
	err := service.Require(requestWith("sid-1", sess), "projects:view")
	assert.NoError(t, err)
}

/*
TestService_CreateRole_Validation covers the grant grammar and registry
checks at role creation.
*/
func TestService_CreateRole_Validation(t *testing.T) {
	store := newFakeStore()
	store.definitions = []rbac.PermissionDefinition{
		{Code: "projects:view", Name: "View projects", Category: "projects"},
	}
	service := rbac.NewService(store, newFakeVersions(),
		session.NewManager(newFakeSessionStore(), false))

	t.Run("registered_exact_code", func(t *testing.T) {
		role, err := service.CreateRole(context.Background(), nil, rbac.CreateRoleInput{
			Name:        "Viewer",
			Permissions: []string{"projects:view"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, role.ID)
		assert.True(t, role.IsActive)
	})

	t.Run("wildcards_skip_registry", func(t *testing.T) {
		_, err := service.CreateRole(context.Background(), nil, rbac.CreateRoleInput{
			Name:        "Admin",
			Permissions: []string{"*", "projects:*"},
		})
		assert.NoError(t, err)
	})

	t.Run("bad_grammar", func(t *testing.T) {
		_, err := service.CreateRole(context.Background(), nil, rbac.CreateRoleInput{
			Name:        "Broken",
			Permissions: []string{"no-colon"},
		})
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	})

	t.Run("unregistered_exact_code", func(t *testing.T) {
		_, err := service.CreateRole(context.Background(), nil, rbac.CreateRoleInput{
			Name:        "Typo",
			Permissions: []string{"projects:vew"},
		})
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	})
}

/*
TestService_AssignRevoke_BumpsVersion verifies that role membership changes
invalidate the user's cached snapshots via the version store.
*/
func TestService_AssignRevoke_BumpsVersion(t *testing.T) {
	store := newFakeStore()
	versions := newFakeVersions()
	service := rbac.NewService(store, versions,
		session.NewManager(newFakeSessionStore(), false))

	role, err := service.CreateRole(context.Background(), nil, rbac.CreateRoleInput{
		Name:        "Admin",
		Permissions: []string{"*"},
	})
	require.NoError(t, err)

	require.NoError(t, service.AssignRole(context.Background(), nil, "acme", "user-1", role.ID))
	current, err := versions.Current(context.Background(), "acme", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)

	require.NoError(t, service.RevokeRole(context.Background(), nil, "acme", "user-1", role.ID))
	current, err = versions.Current(context.Background(), "acme", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)

	t.Run("assigning_unknown_role_fails", func(t *testing.T) {
		err := service.AssignRole(context.Background(), nil, "acme", "user-1", "missing")
		require.Error(t, err)
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	})
}
