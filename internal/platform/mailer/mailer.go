// Copyright (c) 2026 Tessera. All rights reserved.

// Package mailer defines the outbound email boundary.
//
// # Architecture
//
// The user service depends on the [Mailer] interface only. Production wiring
// would plug in a provider-backed implementation; the default [LogMailer]
// writes the message to the structured log, which is what development and CI
// environments run with.
package mailer

import (
	"context"
	"log/slog"
)

// Mailer delivers transactional account emails.
type Mailer interface {
	// SendEmailConfirmation delivers the address-verification link.
	SendEmailConfirmation(ctx context.Context, to, confirmURL string) error

	// SendPasswordReset delivers the password-reset link.
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// LogMailer writes outbound emails to the structured log instead of sending
// them. The embedded links carry live single-use tokens, so the log level is
// kept at Info for development visibility.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendEmailConfirmation implements [Mailer].
func (m *LogMailer) SendEmailConfirmation(ctx context.Context, to, confirmURL string) error {
	m.logger.InfoContext(ctx, "mail_email_confirmation",
		slog.String("to", to),
		slog.String("confirm_url", confirmURL),
	)
	return nil
}

// SendPasswordReset implements [Mailer].
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	m.logger.InfoContext(ctx, "mail_password_reset",
		slog.String("to", to),
		slog.String("reset_url", resetURL),
	)
	return nil
}
