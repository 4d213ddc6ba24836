package mapping

import (
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	"github.com/kaustubhdw/user_auth_app/internal/models"
)

// ToModelUser converts a domain User to a model User.
func ToModelUser(d domain.User) models.User {
	var bio *string
	if d.Bio != "" {
		b := d.Bio
		bio = &b
	}
	return models.User{
		UserID:                          d.UserID,
		Email:                           d.Email,
		FullName:                        d.FullName,
		Bio:                             bio,
		PasswordHash:                    d.PasswordHash,
		Role:                            string(d.Role),
		IsEmailVerified:                 d.IsEmailVerified,
		IsActive:                        d.IsActive,
		EmailVerificationTokenHash:      d.EmailVerificationTokenHash,
		EmailVerificationTokenExpiresAt: d.EmailVerificationTokenExpiresAt,
		PasswordResetTokenHash:          d.PasswordResetTokenHash,
		PasswordResetTokenExpiresAt:     d.PasswordResetTokenExpiresAt,
		LoginAttempts:                   d.LoginAttempts,
		LockUntil:                       d.LockUntil,
		LastLoginAt:                     d.LastLoginAt,
		CreatedAt:                       d.CreatedAt,
		UpdatedAt:                       d.UpdatedAt,
		DeletedAt:                       d.DeletedAt,
	}
}

// ToDomainUser converts a model User to a domain User. Refresh tokens and
// linked providers are loaded separately by the repository.
func ToDomainUser(m models.User) domain.User {
	bio := ""
	if m.Bio != nil {
		bio = *m.Bio
	}
	return domain.User{
		UserID:                          m.UserID,
		Email:                           m.Email,
		FullName:                        m.FullName,
		Bio:                             bio,
		PasswordHash:                    m.PasswordHash,
		Role:                            domain.UserRole(m.Role),
		IsEmailVerified:                 m.IsEmailVerified,
		IsActive:                        m.IsActive,
		EmailVerificationTokenHash:      m.EmailVerificationTokenHash,
		EmailVerificationTokenExpiresAt: m.EmailVerificationTokenExpiresAt,
		PasswordResetTokenHash:          m.PasswordResetTokenHash,
		PasswordResetTokenExpiresAt:     m.PasswordResetTokenExpiresAt,
		LoginAttempts:                   m.LoginAttempts,
		LockUntil:                       m.LockUntil,
		LastLoginAt:                     m.LastLoginAt,
		CreatedAt:                       m.CreatedAt,
		UpdatedAt:                       m.UpdatedAt,
		DeletedAt:                       m.DeletedAt,
	}
}

// ToDomainRefreshToken converts a model RefreshToken to its domain shape.
func ToDomainRefreshToken(m models.RefreshToken) domain.RefreshToken {
	return domain.RefreshToken{
		TokenHash: m.TokenHash,
		Device:    m.Device,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}

// ToDomainRefreshTokenSlice converts a slice of model RefreshTokens.
func ToDomainRefreshTokenSlice(ms []models.RefreshToken) []domain.RefreshToken {
	ds := make([]domain.RefreshToken, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRefreshToken(m)
	}
	return ds
}

// ToDomainOAuthProvider converts a model OAuthProvider to its domain shape.
func ToDomainOAuthProvider(m models.OAuthProvider) domain.OAuthProvider {
	return domain.OAuthProvider{
		Provider:       domain.OAuthProviderName(m.Provider),
		ProviderUserID: m.ProviderUserID,
	}
}

// ToDomainOAuthProviderSlice converts a slice of model OAuthProviders.
func ToDomainOAuthProviderSlice(ms []models.OAuthProvider) []domain.OAuthProvider {
	ds := make([]domain.OAuthProvider, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOAuthProvider(m)
	}
	return ds
}
