package repositories

import (
	"context"
	"time"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts and their
// refresh-token sets. Soft-deleted rows are excluded by default; callers that
// need them (registration resurrection) pass includeDeleted explicitly rather
// than relying on an ambient query hook.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, user domain.User) error
	// UpdateUserAndRevokeSessions writes the user row and deletes all of its
	// refresh-token entries in a single transaction, for state changes that
	// must not leave live sessions behind (password reset, block, delete).
	UpdateUserAndRevokeSessions(ctx context.Context, user domain.User) error

	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.User, error)
	// FindUserByRefreshTokenHash resolves the owner of a refresh-token
	// fingerprint, loading the matching token entry alongside the user.
	FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, *domain.RefreshToken, error)
	// FindUserByResetTokenHash matches a pending, unexpired password-reset
	// fingerprint. The fingerprint alone identifies the account.
	FindUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	// FindUserByVerificationToken matches {email, fingerprint, expiry > now}.
	FindUserByVerificationToken(ctx context.Context, email, tokenHash string, now time.Time) (*domain.User, error)

	// ListUsers returns a page of non-deleted users, optionally filtered by a
	// case-insensitive substring match over full name and email.
	ListUsers(ctx context.Context, search string, limit, offset int) ([]domain.User, error)
	CountUsers(ctx context.Context, search string) (int64, error)

	// Refresh-token set management. RotateRefreshToken is conditional on the
	// old fingerprint so concurrent rotations of the same entry cannot both
	// succeed; it reports whether a row was actually replaced.
	AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken) error
	RotateRefreshToken(ctx context.Context, oldTokenHash, newTokenHash string, expiresAt time.Time) (bool, error)
	RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)

	LinkOAuthProvider(ctx context.Context, userID string, provider domain.OAuthProvider) error
}

// ActivityRepository defines persistence for the append-only audit log.
type ActivityRepository interface {
	SaveActivity(ctx context.Context, activity domain.Activity) error
	FindActivities(ctx context.Context, limit, offset int) ([]domain.Activity, error)
	CountActivities(ctx context.Context) (int64, error)
}

// RepositoryProvider bundles all repositories for dependency injection.
type RepositoryProvider struct {
	UserRepo     UserRepository
	ActivityRepo ActivityRepository
}
