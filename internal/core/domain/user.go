package domain

import "time"

// UserRole is the closed set of roles a user can hold.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// OAuthProviderName is the closed set of supported federation providers.
type OAuthProviderName string

const (
	ProviderGoogle   OAuthProviderName = "google"
	ProviderGitHub   OAuthProviderName = "github"
	ProviderFacebook OAuthProviderName = "facebook"
)

// IsValid reports whether the provider is one of the supported set.
func (p OAuthProviderName) IsValid() bool {
	switch p {
	case ProviderGoogle, ProviderGitHub, ProviderFacebook:
		return true
	}
	return false
}

// OAuthProvider is one linked third-party identity on a user.
type OAuthProvider struct {
	Provider       OAuthProviderName `json:"provider"`
	ProviderUserID string            `json:"providerUserId"`
}

// RefreshToken is one entry in a user's refresh-token set. Only the SHA-256
// fingerprint of the opaque token is ever stored.
type RefreshToken struct {
	TokenHash string    `json:"-"`
	Device    string    `json:"device,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User represents a user account in the domain.
//
// PasswordHash is nil for accounts created through OAuth federation that have
// never been provisioned a password. Verification and reset token fields hold
// fingerprints, never plaintext, and are cleared once consumed.
type User struct {
	UserID       string   `json:"userID"`
	Email        string   `json:"email"`
	FullName     string   `json:"fullName"`
	Bio          string   `json:"bio,omitempty"`
	PasswordHash *string  `json:"-"`
	Role         UserRole `json:"role"`

	IsEmailVerified bool `json:"isEmailVerified"`
	IsActive        bool `json:"isActive"`

	EmailVerificationTokenHash      *string    `json:"-"`
	EmailVerificationTokenExpiresAt *time.Time `json:"-"`
	PasswordResetTokenHash          *string    `json:"-"`
	PasswordResetTokenExpiresAt     *time.Time `json:"-"`

	LoginAttempts int        `json:"-"`
	LockUntil     *time.Time `json:"-"`

	OAuthProviders []OAuthProvider `json:"oauthProviders,omitempty"`
	RefreshTokens  []RefreshToken  `json:"-"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// IsLocked reports whether the account lockout window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// HasPassword reports whether password-based operations are available.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasProvider reports whether the given (provider, providerUserID) pair is
// already linked to this account.
func (u *User) HasProvider(provider OAuthProviderName, providerUserID string) bool {
	for _, p := range u.OAuthProviders {
		if p.Provider == provider && p.ProviderUserID == providerUserID {
			return true
		}
	}
	return false
}

// ExternalIdentity is the normalized record an OAuth code exchange produces.
// All providers are reduced to this single shape.
type ExternalIdentity struct {
	Provider       OAuthProviderName `json:"provider"`
	ProviderUserID string            `json:"providerUserId"`
	Email          string            `json:"email"`
	FullName       string            `json:"fullName"`
	Picture        string            `json:"picture,omitempty"`
	Verified       bool              `json:"verified"`
}
