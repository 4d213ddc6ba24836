package models

import "time"

// User is the database row representation of a user account.
type User struct {
	UserID       string  `db:"user_id"`
	Email        string  `db:"email"`
	FullName     string  `db:"full_name"`
	Bio          *string `db:"bio"`
	PasswordHash *string `db:"password_hash"`
	Role         string  `db:"role"`

	IsEmailVerified bool `db:"is_email_verified"`
	IsActive        bool `db:"is_active"`

	EmailVerificationTokenHash      *string    `db:"email_verification_token_hash"`
	EmailVerificationTokenExpiresAt *time.Time `db:"email_verification_expires_at"`
	PasswordResetTokenHash          *string    `db:"password_reset_token_hash"`
	PasswordResetTokenExpiresAt     *time.Time `db:"password_reset_expires_at"`

	LoginAttempts int        `db:"login_attempts"`
	LockUntil     *time.Time `db:"lock_until"`

	LastLoginAt *time.Time `db:"last_login_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

// RefreshToken is one row of a user's refresh-token set. The opaque token is
// persisted only as its SHA-256 fingerprint.
type RefreshToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	Device    string    `db:"device"`
	IPAddress string    `db:"ip_address"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// OAuthProvider is one linked third-party identity row.
type OAuthProvider struct {
	ID             string `db:"id"`
	UserID         string `db:"user_id"`
	Provider       string `db:"provider"`
	ProviderUserID string `db:"provider_user_id"`
}
