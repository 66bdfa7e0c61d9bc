// Copyright (c) 2026 Tessera. All rights reserved.

package user

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/mailer"
	"github.com/tesserahq/tessera/internal/platform/sec"
	"github.com/tesserahq/tessera/internal/rbac"
	"github.com/tesserahq/tessera/internal/session"
	"github.com/tesserahq/tessera/internal/tenant"
	"github.com/tesserahq/tessera/internal/token"
	"github.com/tesserahq/tessera/pkg/uuidv7"
)

// Service implements account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, sign-in,
// or token redemption logic must be reviewed by the security team.
type Service struct {
	store       Store
	sessions    *session.Manager
	rbacService *rbac.Service
	issuer      *token.Issuer
	ledger      token.Ledger
	mail        mailer.Mailer
	appBaseURL  string
}

// NewService constructs a new user [Service] with its dependencies.
func NewService(
	store Store,
	sessions *session.Manager,
	rbacService *rbac.Service,
	issuer *token.Issuer,
	ledger token.Ledger,
	mail mailer.Mailer,
	appBaseURL string,
) *Service {
	return &Service{
		store:       store,
		sessions:    sessions,
		rbacService: rbacService,
		issuer:      issuer,
		ledger:      ledger,
		mail:        mail,
		appBaseURL:  appBaseURL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new account, then sends the
email confirmation link.

Description: The account starts unverified. The confirmation token is bound
to the tenant resolved for this request, so the link only redeems on the
same tenant it was requested from.

Parameters:
  - ctx: context.Context
  - tc: *tenant.Context (Resolved tenant and partition)
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Conflict (if the email exists) or storage errors
*/
func (service *Service) Register(ctx context.Context, tc *tenant.Context, input RegisterInput) (*User, error) {

	// Prevent storing plain-text passwords. Default cost balances security
	// and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user_service_hash_failed: %w", err)
	}

	u := &User{
		ID:           uuidv7.New(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		IsActive:     true,
		IsVerified:   false,
	}

	// The unique index on email is the uniqueness authority; a pre-check
	// SELECT would race against concurrent sign-ups.
	if err := service.store.Create(ctx, tc.Partition, u); err != nil {
		return nil, err
	}

	// Mint the confirmation token bound to this tenant and email it as a
	// best-effort side effect. The account exists either way; the user can
	// request a fresh link.
	confirmToken, err := service.issuer.Issue(u.ID, u.Email, tc.ID, token.PurposeEmailConfirm)
	if err == nil {
		confirmURL := service.appBaseURL + "/confirm-email?token=" + confirmToken
		_ = service.mail.SendEmailConfirmation(ctx, u.Email, confirmURL)
	}

	return u, nil
}

/*
ConfirmEmail redeems an email confirmation token.

Description: Verifies the token's signature, purpose, and tenant binding,
consumes its single-use id, and marks the account verified.

Parameters:
  - ctx: context.Context
  - tc: *tenant.Context
  - tokenString: string (The raw token from the emailed link)

Returns:
  - error: Token verification failures or storage errors
*/
func (service *Service) ConfirmEmail(ctx context.Context, tc *tenant.Context, tokenString string) error {
	claims, err := service.issuer.Verify(tokenString, tc.ID, token.PurposeEmailConfirm)
	if err != nil {
		return err
	}

	// Single-use: the ledger entry lives exactly as long as the token could
	// still verify, so a replayed link dies even inside the validity window.
	if err := service.ledger.Consume(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return err
	}

	return service.store.MarkVerified(ctx, tc.Partition, claims.UserID)
}

// # Sign-In Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates credentials and establishes a tenant-bound session.

Description: Verifies identity with a constant-time password comparison,
snapshots the user's permissions, and issues a session cookie bound to the
tenant resolved for this request.

Parameters:
  - ctx: context.Context
  - writer: http.ResponseWriter (Receives the session cookie)
  - tc: *tenant.Context
  - input: LoginInput

Returns:
  - *User: The authenticated account
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(ctx context.Context, writer http.ResponseWriter, tc *tenant.Context, input LoginInput) (*User, error) {
	u, err := service.store.FindByEmail(ctx, tc.Partition, input.Email)

	// An unknown address collapses into the generic credential failure to
	// prevent account enumeration. Any other lookup failure is an
	// operational fault and must stay visible as one.
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("user_service_login_lookup_failed: %w", err)
	}

	if !u.IsActive || !u.HasPassword() {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// bcrypt comparison is constant-time, preventing timing attacks.
	if !sec.CheckPasswordHash(input.Password, u.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Snapshot the permission set and its current version into the session.
	permissions, err := service.rbacService.GetUserPermissions(ctx, tc.Partition, u.ID)
	if err != nil {
		return nil, fmt.Errorf("user_service_permission_snapshot_failed: %w", err)
	}

	version, err := service.rbacService.CurrentVersion(ctx, tc.ID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("user_service_permission_version_failed: %w", err)
	}

	sess := session.New(u.ID, tc.ID, permissions, version)
	if _, err := service.sessions.Issue(ctx, writer, sess); err != nil {
		return nil, fmt.Errorf("user_service_session_issue_failed: %w", err)
	}

	return u, nil
}

/*
Logout revokes the current session and expires its cookie.

Description: Idempotent. Signing out with no session, or an already revoked
one, succeeds.
*/
func (service *Service) Logout(ctx context.Context, writer http.ResponseWriter, sessionID string) error {
	return service.sessions.Revoke(ctx, writer, sessionID)
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Mints a tenant-bound reset token and emails the link. Succeeds
silently when the email is unknown to prevent account enumeration.

Parameters:
  - ctx: context.Context
  - tc: *tenant.Context
  - email: string
*/
func (service *Service) RequestPasswordReset(ctx context.Context, tc *tenant.Context, email string) error {
	u, err := service.store.FindByEmail(ctx, tc.Partition, email)
	if err != nil {
		// Unknown address: report success, send nothing.
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil
		}
		return fmt.Errorf("user_service_reset_lookup_failed: %w", err)
	}

	resetToken, err := service.issuer.Issue(u.ID, u.Email, tc.ID, token.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("user_service_reset_token_failed: %w", err)
	}

	resetURL := service.appBaseURL + "/reset-password?token=" + resetToken
	if err := service.mail.SendPasswordReset(ctx, u.Email, resetURL); err != nil {
		return fmt.Errorf("user_service_reset_mail_failed: %w", err)
	}

	return nil
}

/*
ConfirmPasswordReset completes the forgot-password flow.

Description: Verifies the reset token against the current tenant, consumes
its single-use id, and replaces the stored password hash.

Parameters:
  - ctx: context.Context
  - tc: *tenant.Context
  - tokenString: string
  - newPassword: string

Returns:
  - error: Token verification, hashing, or storage failures
*/
func (service *Service) ConfirmPasswordReset(ctx context.Context, tc *tenant.Context, tokenString, newPassword string) error {
	claims, err := service.issuer.Verify(tokenString, tc.ID, token.PurposePasswordReset)
	if err != nil {
		return err
	}

	if err := service.ledger.Consume(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user_service_hash_failed: %w", err)
	}

	return service.store.UpdatePassword(ctx, tc.Partition, claims.UserID, hashedPassword)
}

/*
GetProfile retrieves the account for the given user id.
*/
func (service *Service) GetProfile(ctx context.Context, tc *tenant.Context, userID string) (*User, error) {
	return service.store.FindByID(ctx, tc.Partition, userID)
}

/*
IntrospectSession resolves a presented session id against the current tenant.

Description: Serves the public session-introspection endpoint, which frontends
call before knowing whether anyone is signed in. Every validation failure
(missing cookie, unknown or expired id, session bound to another tenant) is
reported as anonymous rather than as an error.

Returns:
  - *session.Session: The live session, or nil for anonymous callers
*/
func (service *Service) IntrospectSession(ctx context.Context, currentTenantID, sessionID string) *session.Session {
	sess, err := service.sessions.Validate(ctx, sessionID, currentTenantID)
	if err != nil {
		return nil
	}
	return sess
}
