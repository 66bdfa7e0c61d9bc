// Copyright (c) 2026 Tessera. All rights reserved.

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/tesserahq/tessera/internal/platform/ctxkey"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Tenancy

// WithTenant returns a new context with the resolved tenant context attached.
func WithTenant(ctx context.Context, tc *tenant.Context) context.Context {
	return context.WithValue(ctx, ctxkey.KeyTenant, tc)
}

// GetTenant retrieves the resolved [*tenant.Context].
//
// Returns nil when tenant resolution has not run; downstream security
// stages treat that as a hard failure, never as an implicit default.
func GetTenant(ctx context.Context) *tenant.Context {
	tc, ok := ctx.Value(ctxkey.KeyTenant).(*tenant.Context)
	if !ok {
		return nil
	}
	return tc
}

// # Identity & Access

// WithSession returns a new context carrying the validated session and its
// opaque id.
func WithSession(ctx context.Context, id string, sess *session.Session) context.Context {
	ctx = context.WithValue(ctx, ctxkey.KeySessionID, id)
	return context.WithValue(ctx, ctxkey.KeySession, sess)
}

// GetSession retrieves the validated [*session.Session], or nil for
// anonymous requests.
func GetSession(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(ctxkey.KeySession).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetSessionID retrieves the opaque id of the validated session.
// Returns an empty string for anonymous requests.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeySessionID).(string)
	return id
}

// GetUserID returns the authenticated user's id, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	if sess := GetSession(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}
