package services

import (
	"context"
	"time"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
)

// AuthSvcFacade is the credential and session lifecycle state machine: it owns
// every transition of an account between unverified, verified, active, locked
// and deleted, and all issuance, rotation and revocation of refresh tokens.
type AuthSvcFacade interface {
	// Register creates a new account or resurrects a soft-deleted one with the
	// same email, and dispatches a verification email. Fails with
	// apperrors.ErrDuplicate when an active account with this email exists.
	Register(ctx context.Context, req dto.RegisterRequest, meta dto.RequestMeta) error

	// VerifyEmail consumes a single-use verification token.
	VerifyEmail(ctx context.Context, email, token string, meta dto.RequestMeta) error

	// Login authenticates by email and password and issues an access/refresh
	// token pair. The lockout window is checked before the password hash.
	Login(ctx context.Context, req dto.LoginRequest, meta dto.RequestMeta) (*dto.TokenPairResponse, error)

	// Logout removes the matching refresh-token entry. A token that is already
	// absent is not an error.
	Logout(ctx context.Context, user *domain.User, refreshToken string, meta dto.RequestMeta) error

	// RefreshAccessToken rotates a refresh token in place and issues a new
	// access token. The prior refresh token is invalid immediately after.
	RefreshAccessToken(ctx context.Context, refreshToken string, meta dto.RequestMeta) (*dto.TokenPairResponse, error)

	// ForgotPassword issues a reset token and dispatches the reset email.
	// Fails with apperrors.ErrNotFound when no account matches the email.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and sets a new password hash. Also
	// provisions a password for OAuth-only accounts; see service docs.
	ResetPassword(ctx context.Context, token, newPassword string, meta dto.RequestMeta) error

	// OAuthLogin exchanges a provider code, finds or creates the account, links
	// the provider identity and issues tokens through the same path as Login.
	OAuthLogin(ctx context.Context, provider domain.OAuthProviderName, code string, meta dto.RequestMeta) (*dto.OAuthLoginResponse, error)
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a short-lived signed JWT for the given user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// GenerateRefreshToken creates a 64-byte opaque refresh token and its expiry.
	GenerateRefreshToken(ctx context.Context) (string, time.Time, error)
	// GeneratePurposeToken creates a 32-byte single-use token for email
	// verification or password reset, expiring after ttl.
	GeneratePurposeToken(ctx context.Context, ttl time.Duration) (string, time.Time, error)
	// Fingerprint returns the deterministic one-way digest under which an
	// opaque token is stored and looked up.
	Fingerprint(token string) string
}

// OAuthSvcFacade normalizes a third-party authorization code into a canonical
// identity record. All providers share this single contract.
type OAuthSvcFacade interface {
	Exchange(ctx context.Context, provider domain.OAuthProviderName, code string) (*domain.ExternalIdentity, error)
}

// EmailSvcFacade dispatches transactional emails. Callers treat failures as
// best-effort: a failed send is logged and never fails the primary operation.
type EmailSvcFacade interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}
