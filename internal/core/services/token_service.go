package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
	"github.com/kaustubhdw/user_auth_app/internal/utils"
)

// tokenService implements the TokenSvcFacade for JWT access tokens and the
// opaque refresh/purpose tokens. Opaque tokens leave this service in
// plaintext exactly once; everything stored or looked up goes through
// Fingerprint.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, expiryTime, nil
}

// GenerateRefreshToken creates a new opaque refresh token. 64 random bytes
// give a 128-character hex string.
func (s *tokenService) GenerateRefreshToken(ctx context.Context) (string, time.Time, error) {
	rawRefreshToken, err := utils.GenerateSecureRandomString(64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate secure random string for refresh token: %w", err)
	}

	expiryTime := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	return rawRefreshToken, expiryTime, nil
}

// GeneratePurposeToken creates a single-use token for email verification or
// password reset. 32 random bytes give a 64-character hex string.
func (s *tokenService) GeneratePurposeToken(ctx context.Context, ttl time.Duration) (string, time.Time, error) {
	rawToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate secure random string for purpose token: %w", err)
	}
	return rawToken, time.Now().Add(ttl), nil
}

// Fingerprint returns the digest under which an opaque token is stored.
func (s *tokenService) Fingerprint(token string) string {
	return utils.HashToken(token)
}
