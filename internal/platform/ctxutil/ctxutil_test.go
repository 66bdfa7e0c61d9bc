// Copyright (c) 2026 Tessera. All rights reserved.

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesserahq/tessera/internal/platform/ctxutil"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Tenant verifies that the resolved tenant can be stored in context.
*/
func TestContext_Tenant(t *testing.T) {
	ctx := context.Background()
	tc := &tenant.Context{ID: "acme"}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetTenant(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithTenant(ctx, tc)
	retrieved := ctxutil.GetTenant(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "acme", retrieved.ID)
}

/*
TestContext_Session verifies that a validated session and its id can be
stored in context, including the GetUserID shortcut.
*/
func TestContext_Session(t *testing.T) {
	ctx := context.Background()
	sess := session.New("user-123", "acme", []string{"projects:view"}, 1)

	// 1. Initially everything should be absent
	assert.Nil(t, ctxutil.GetSession(ctx))
	assert.Empty(t, ctxutil.GetSessionID(ctx))
	assert.Empty(t, ctxutil.GetUserID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithSession(ctx, "session-abc", sess)

	retrieved := ctxutil.GetSession(ctx)
	assert.NotNil(t, retrieved)
	assert.Equal(t, "acme", retrieved.TenantID)
	assert.Equal(t, "session-abc", ctxutil.GetSessionID(ctx))
	assert.Equal(t, "user-123", ctxutil.GetUserID(ctx))
}
