package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaustubhdw/user_auth_app/internal/apperrors"
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portsrepo "github.com/kaustubhdw/user_auth_app/internal/core/ports/repositories"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
	"github.com/kaustubhdw/user_auth_app/internal/middleware"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
	"github.com/kaustubhdw/user_auth_app/internal/utils"
)

// authService implements AuthSvcFacade. It owns every account state
// transition: registration and resurrection, verification, login with
// lockout, refresh-token rotation and the password-reset flow.
type authService struct {
	cfg      *config.Config
	userRepo portsrepo.UserRepository
	token    portssvc.TokenSvcFacade
	oauth    portssvc.OAuthSvcFacade
	email    portssvc.EmailSvcFacade
	activity portssvc.ActivitySvcFacade
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	cfg *config.Config,
	userRepo portsrepo.UserRepository,
	token portssvc.TokenSvcFacade,
	oauth portssvc.OAuthSvcFacade,
	emailSvc portssvc.EmailSvcFacade,
	activity portssvc.ActivitySvcFacade,
) portssvc.AuthSvcFacade {
	return &authService{
		cfg:      cfg,
		userRepo: userRepo,
		token:    token,
		oauth:    oauth,
		email:    emailSvc,
		activity: activity,
	}
}

// Register creates a new account, or resurrects a soft-deleted account that
// used the same email. Either way the account starts unverified and a fresh
// verification token is issued.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, meta dto.RequestMeta) error {
	email := normalizeEmail(req.Email)
	now := time.Now()

	passwordHash, err := utils.HashPassword(req.Password, s.cfg.PasswordPepper, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, verificationExpiry, err := s.token.GeneratePurposeToken(ctx, s.cfg.VerificationTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	verificationHash := s.token.Fingerprint(verificationToken)

	existing, err := s.userRepo.FindUserByEmail(ctx, email, true)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to look up existing user: %w", err)
	}

	var user domain.User
	switch {
	case existing == nil:
		user = domain.User{
			UserID:                          uuid.NewString(),
			Email:                           email,
			FullName:                        req.FullName,
			PasswordHash:                    &passwordHash,
			Role:                            domain.RoleUser,
			IsActive:                        true,
			EmailVerificationTokenHash:      &verificationHash,
			EmailVerificationTokenExpiresAt: &verificationExpiry,
			CreatedAt:                       now,
			UpdatedAt:                       now,
		}
		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			return err
		}

	case existing.DeletedAt == nil:
		return apperrors.ErrDuplicate

	default:
		// Resurrection: the soft-deleted row keeps its identity but every
		// credential and state field starts over.
		user = *existing
		user.FullName = req.FullName
		user.PasswordHash = &passwordHash
		user.Role = domain.RoleUser
		user.IsEmailVerified = false
		user.IsActive = true
		user.EmailVerificationTokenHash = &verificationHash
		user.EmailVerificationTokenExpiresAt = &verificationExpiry
		user.PasswordResetTokenHash = nil
		user.PasswordResetTokenExpiresAt = nil
		user.LoginAttempts = 0
		user.LockUntil = nil
		user.DeletedAt = nil
		user.UpdatedAt = now
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return err
		}
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionUserCreated, meta, map[string]any{"email": email})

	// Email dispatch is best-effort: registration already succeeded.
	if err := s.email.SendVerificationEmail(ctx, email, user.FullName, verificationToken); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to send verification email",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	}
	return nil
}

// VerifyEmail consumes a single-use verification token. The stored
// fingerprint is cleared on success, so replaying the same token fails.
func (s *authService) VerifyEmail(ctx context.Context, email, token string, meta dto.RequestMeta) error {
	email = normalizeEmail(email)
	tokenHash := s.token.Fingerprint(token)

	user, err := s.userRepo.FindUserByVerificationToken(ctx, email, tokenHash, time.Now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidToken
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	user.IsEmailVerified = true
	user.EmailVerificationTokenHash = nil
	user.EmailVerificationTokenExpiresAt = nil
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionEmailVerified, meta, nil)
	return nil
}

// Login authenticates by email and password. The lockout window is checked
// before the password hash is compared, so a locked account reveals nothing
// about whether the password was right. An unverified email does not block
// login.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest, meta dto.RequestMeta) (*dto.TokenPairResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(req.Email), false)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	if user.IsLocked(now) {
		s.activity.Record(ctx, &user.UserID, domain.ActionLoginFailed, meta, map[string]any{"reason": "locked"})
		return nil, apperrors.ErrAccountLocked
	}

	if !user.HasPassword() || !utils.CheckPasswordHash(req.Password, s.cfg.PasswordPepper, *user.PasswordHash) {
		return nil, s.registerFailedAttempt(ctx, user, meta)
	}

	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	s.activity.Record(ctx, &user.UserID, domain.ActionLoginSuccess, meta, nil)
	return pair, nil
}

// registerFailedAttempt increments the attempt counter, opening the lockout
// window once the limit is reached. The attempt itself always fails as a bad
// credential; only logins made while the window is open see the locked error.
func (s *authService) registerFailedAttempt(ctx context.Context, user *domain.User, meta dto.RequestMeta) error {
	now := time.Now()
	user.LoginAttempts++
	user.UpdatedAt = now

	locked := user.LoginAttempts >= s.cfg.MaxLoginAttempts
	if locked {
		lockUntil := now.Add(s.cfg.AccountLockDuration)
		user.LockUntil = &lockUntil
	}

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionLoginFailed, meta, map[string]any{"attempts": user.LoginAttempts})
	if locked {
		middleware.GetLoggerFromCtx(ctx).Warn("Account locked after repeated failed logins",
			slog.String("user_id", user.UserID), slog.Int("attempts", user.LoginAttempts))
		s.activity.Record(ctx, &user.UserID, domain.ActionAccountBlocked, meta, map[string]any{"until": user.LockUntil})
	}
	return apperrors.ErrInvalidCredentials
}

// issueTokenPair generates an access token and a refresh token, persisting
// the refresh token's fingerprint as a new entry in the user's token set.
func (s *authService) issueTokenPair(ctx context.Context, user *domain.User, meta dto.RequestMeta) (*dto.TokenPairResponse, error) {
	accessToken, _, err := s.token.GenerateAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpiry, err := s.token.GenerateRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	entry := domain.RefreshToken{
		TokenHash: s.token.Fingerprint(refreshToken),
		Device:    meta.Device,
		IPAddress: meta.IPAddress,
		CreatedAt: time.Now(),
		ExpiresAt: refreshExpiry,
	}
	if err := s.userRepo.AddRefreshToken(ctx, user.UserID, entry); err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout removes the matching refresh-token entry. Other sessions of the
// same user are untouched, and a token that is already gone is not an error.
func (s *authService) Logout(ctx context.Context, user *domain.User, refreshToken string, meta dto.RequestMeta) error {
	tokenHash := s.token.Fingerprint(refreshToken)
	if err := s.userRepo.RemoveRefreshToken(ctx, user.UserID, tokenHash); err != nil {
		return err
	}
	s.activity.Record(ctx, &user.UserID, domain.ActionLogout, meta, nil)
	return nil
}

// RefreshAccessToken rotates a refresh token in place and issues a new access
// token. The rotation is conditional on the presented fingerprint, so a
// replayed or concurrently rotated token fails instead of silently winning.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string, meta dto.RequestMeta) (*dto.TokenPairResponse, error) {
	now := time.Now()
	oldHash := s.token.Fingerprint(refreshToken)

	user, entry, err := s.userRepo.FindUserByRefreshTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	if entry.ExpiresAt.Before(now) {
		// The presented entry is dead anyway; sweep every expired entry while here.
		if removed, reapErr := s.userRepo.DeleteExpiredRefreshTokens(ctx, now); reapErr != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to delete expired refresh tokens",
				slog.String("error", reapErr.Error()))
		} else if removed > 0 {
			middleware.GetLoggerFromCtx(ctx).Info("Expired refresh tokens removed", slog.Int64("count", removed))
		}
		return nil, apperrors.ErrTokenExpired
	}

	newToken, newExpiry, err := s.token.GenerateRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	rotated, err := s.userRepo.RotateRefreshToken(ctx, oldHash, s.token.Fingerprint(newToken), newExpiry)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, apperrors.ErrInvalidToken
	}

	accessToken, _, err := s.token.GenerateAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: newToken,
	}, nil
}

// ForgotPassword issues a reset token and dispatches the reset email. An
// email that matches no account fails with ErrNotFound.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindUserByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to look up user for password reset: %w", err)
	}

	resetToken, resetExpiry, err := s.token.GeneratePurposeToken(ctx, s.cfg.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	resetHash := s.token.Fingerprint(resetToken)

	user.PasswordResetTokenHash = &resetHash
	user.PasswordResetTokenExpiresAt = &resetExpiry
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return err
	}

	if err := s.email.SendPasswordResetEmail(ctx, email, user.FullName, resetToken); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to send password reset email",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash. This
// also provisions a password for accounts created through OAuth federation
// that never had one. All refresh-token sessions are revoked.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string, meta dto.RequestMeta) error {
	now := time.Now()
	tokenHash := s.token.Fingerprint(token)

	user, err := s.userRepo.FindUserByResetTokenHash(ctx, tokenHash, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	passwordHash, err := utils.HashPassword(newPassword, s.cfg.PasswordPepper, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &passwordHash
	user.PasswordResetTokenHash = nil
	user.PasswordResetTokenExpiresAt = nil
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUserAndRevokeSessions(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionPasswordReset, meta, nil)
	return nil
}

// OAuthLogin exchanges a provider authorization code, finds or creates the
// matching account, links the provider identity and issues tokens through the
// same path as a password login.
func (s *authService) OAuthLogin(ctx context.Context, provider domain.OAuthProviderName, code string, meta dto.RequestMeta) (*dto.OAuthLoginResponse, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: unsupported provider %q", apperrors.ErrValidation, provider)
	}

	identity, err := s.oauth.Exchange(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: provider %s returned no email address", apperrors.ErrOAuth, provider)
	}

	now := time.Now()
	email := normalizeEmail(identity.Email)

	user, err := s.userRepo.FindUserByEmail(ctx, email, false)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user for oauth login: %w", err)
	}

	created := false
	if user == nil {
		user = &domain.User{
			UserID:          uuid.NewString(),
			Email:           email,
			FullName:        identity.FullName,
			Role:            domain.RoleUser,
			IsEmailVerified: identity.Verified,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.userRepo.SaveUser(ctx, *user); err != nil {
			return nil, err
		}
		created = true
	} else if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	if !user.HasProvider(identity.Provider, identity.ProviderUserID) {
		link := domain.OAuthProvider{Provider: identity.Provider, ProviderUserID: identity.ProviderUserID}
		if err := s.userRepo.LinkOAuthProvider(ctx, user.UserID, link); err != nil {
			return nil, err
		}
		user.OAuthProviders = append(user.OAuthProviders, link)
	}

	// A provider that vouches for the address satisfies our own verification.
	if identity.Verified && !user.IsEmailVerified {
		user.IsEmailVerified = true
		user.EmailVerificationTokenHash = nil
		user.EmailVerificationTokenExpiresAt = nil
	}

	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	if created {
		s.activity.Record(ctx, &user.UserID, domain.ActionUserCreated, meta, map[string]any{"provider": string(provider)})
	}
	s.activity.Record(ctx, &user.UserID, domain.ActionLoginSuccess, meta, map[string]any{"provider": string(provider)})

	return &dto.OAuthLoginResponse{
		TokenPairResponse: *pair,
		User:              dto.ToUserResponse(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
