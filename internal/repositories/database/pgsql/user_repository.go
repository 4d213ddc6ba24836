package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaustubhdw/user_auth_app/internal/apperrors"
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portsrepo "github.com/kaustubhdw/user_auth_app/internal/core/ports/repositories"
	"github.com/kaustubhdw/user_auth_app/internal/models"
	"github.com/kaustubhdw/user_auth_app/internal/utils/mapping"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

const (
	usersTable = "users"

	selectUserFields = `
		user_id, email, full_name, bio, password_hash, role,
		is_email_verified, is_active,
		email_verification_token_hash, email_verification_expires_at,
		password_reset_token_hash, password_reset_expires_at,
		login_attempts, lock_until, last_login_at,
		created_at, updated_at, deleted_at
	`

	insertUserQuery = `
		INSERT INTO ` + usersTable + ` (
			user_id, email, full_name, bio, password_hash, role,
			is_email_verified, is_active,
			email_verification_token_hash, email_verification_expires_at,
			password_reset_token_hash, password_reset_expires_at,
			login_attempts, lock_until, last_login_at,
			created_at, updated_at, deleted_at
		) VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	updateUserQuery = `
		UPDATE ` + usersTable + ` SET
			email = lower($2),
			full_name = $3,
			bio = $4,
			password_hash = $5,
			role = $6,
			is_email_verified = $7,
			is_active = $8,
			email_verification_token_hash = $9,
			email_verification_expires_at = $10,
			password_reset_token_hash = $11,
			password_reset_expires_at = $12,
			login_attempts = $13,
			lock_until = $14,
			last_login_at = $15,
			updated_at = $16,
			deleted_at = $17
		WHERE user_id = $1
	`
)

func scanUser(row pgx.Row) (*models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.FullName,
		&m.Bio,
		&m.PasswordHash,
		&m.Role,
		&m.IsEmailVerified,
		&m.IsActive,
		&m.EmailVerificationTokenHash,
		&m.EmailVerificationTokenExpiresAt,
		&m.PasswordResetTokenHash,
		&m.PasswordResetTokenExpiresAt,
		&m.LoginAttempts,
		&m.LockUntil,
		&m.LastLoginAt,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	_, err := r.Pool.Exec(ctx, insertUserQuery,
		m.UserID, m.Email, m.FullName, m.Bio, m.PasswordHash, m.Role,
		m.IsEmailVerified, m.IsActive,
		m.EmailVerificationTokenHash, m.EmailVerificationTokenExpiresAt,
		m.PasswordResetTokenHash, m.PasswordResetTokenExpiresAt,
		m.LoginAttempts, m.LockUntil, m.LastLoginAt,
		m.CreatedAt, m.UpdatedAt, m.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	cmdTag, err := r.Pool.Exec(ctx, updateUserQuery,
		m.UserID, m.Email, m.FullName, m.Bio, m.PasswordHash, m.Role,
		m.IsEmailVerified, m.IsActive,
		m.EmailVerificationTokenHash, m.EmailVerificationTokenExpiresAt,
		m.PasswordResetTokenHash, m.PasswordResetTokenExpiresAt,
		m.LoginAttempts, m.LockUntil, m.LastLoginAt,
		m.UpdatedAt, m.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + selectUserFields + ` FROM ` + usersTable + ` WHERE user_id = $1 AND deleted_at IS NULL`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return r.hydrateUser(ctx, *m)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.User, error) {
	query := `SELECT ` + selectUserFields + ` FROM ` + usersTable + ` WHERE email = lower($1)`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	// With soft-deleted rows included more than one row can match; the
	// non-deleted one, if any, wins.
	query += ` ORDER BY (deleted_at IS NULL) DESC, created_at DESC LIMIT 1`

	m, err := scanUser(r.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return r.hydrateUser(ctx, *m)
}

func (r *PgxUserRepository) FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, *domain.RefreshToken, error) {
	query := `
		SELECT u.user_id, rt.token_hash, rt.device, rt.ip_address, rt.created_at, rt.expires_at
		FROM refresh_tokens rt
		JOIN ` + usersTable + ` u ON u.user_id = rt.user_id
		WHERE rt.token_hash = $1 AND u.deleted_at IS NULL
	`
	var userID string
	var tokenModel models.RefreshToken
	err := r.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&userID,
		&tokenModel.TokenHash,
		&tokenModel.Device,
		&tokenModel.IPAddress,
		&tokenModel.CreatedAt,
		&tokenModel.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user by refresh token hash: %w", err)
	}

	user, err := r.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	token := mapping.ToDomainRefreshToken(tokenModel)
	return user, &token, nil
}

func (r *PgxUserRepository) FindUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	query := `SELECT ` + selectUserFields + ` FROM ` + usersTable + `
		WHERE password_reset_token_hash = $1 AND password_reset_expires_at > $2 AND deleted_at IS NULL`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, tokenHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by reset token: %w", err)
	}
	return r.hydrateUser(ctx, *m)
}

func (r *PgxUserRepository) FindUserByVerificationToken(ctx context.Context, email, tokenHash string, now time.Time) (*domain.User, error) {
	query := `SELECT ` + selectUserFields + ` FROM ` + usersTable + `
		WHERE email = lower($1) AND email_verification_token_hash = $2
		AND email_verification_expires_at > $3 AND deleted_at IS NULL`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, email, tokenHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by verification token: %w", err)
	}
	return r.hydrateUser(ctx, *m)
}

func (r *PgxUserRepository) ListUsers(ctx context.Context, search string, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + selectUserFields + ` FROM ` + usersTable + ` WHERE deleted_at IS NULL`
	args := []any{}
	if search != "" {
		query += ` AND (full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')`
		args = append(args, search)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, mapping.ToDomainUser(*m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", rows.Err())
	}
	return users, nil
}

func (r *PgxUserRepository) CountUsers(ctx context.Context, search string) (int64, error) {
	query := `SELECT COUNT(*) FROM ` + usersTable + ` WHERE deleted_at IS NULL`
	args := []any{}
	if search != "" {
		query += ` AND (full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')`
		args = append(args, search)
	}
	var count int64
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *PgxUserRepository) AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, device, ip_address, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.Pool.Exec(ctx, query,
		uuid.NewString(), userID, token.TokenHash, token.Device, token.IPAddress,
		token.CreatedAt, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken replaces the fingerprint of a single token entry in
// place. The update is conditional on the old fingerprint, so a concurrent
// rotation or logout of the same entry makes this a no-op rather than a lost
// write; device and address metadata are preserved.
func (r *PgxUserRepository) RotateRefreshToken(ctx context.Context, oldTokenHash, newTokenHash string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET token_hash = $2, expires_at = $3, created_at = NOW()
		WHERE token_hash = $1
	`
	cmdTag, err := r.Pool.Exec(ctx, query, oldTokenHash, newTokenHash, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (r *PgxUserRepository) RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2`
	_, err := r.Pool.Exec(ctx, query, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to remove refresh token: %w", err)
	}
	return nil
}

// UpdateUserAndRevokeSessions writes the user row and deletes every
// refresh-token entry the user holds, in one transaction. A failure on either
// side leaves both the row and the token set untouched.
func (r *PgxUserRepository) UpdateUserAndRevokeSessions(ctx context.Context, user domain.User) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	m := mapping.ToModelUser(user)
	cmdTag, err := tx.Exec(ctx, updateUserQuery,
		m.UserID, m.Email, m.FullName, m.Bio, m.PasswordHash, m.Role,
		m.IsEmailVerified, m.IsActive,
		m.EmailVerificationTokenHash, m.EmailVerificationTokenExpiresAt,
		m.PasswordResetTokenHash, m.PasswordResetTokenExpiresAt,
		m.LoginAttempts, m.LockUntil, m.LastLoginAt,
		m.UpdatedAt, m.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, m.UserID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PgxUserRepository) LinkOAuthProvider(ctx context.Context, userID string, provider domain.OAuthProvider) error {
	query := `
		INSERT INTO oauth_providers (id, user_id, provider, provider_user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, provider, provider_user_id) DO NOTHING
	`
	_, err := r.Pool.Exec(ctx, query, uuid.NewString(), userID, string(provider.Provider), provider.ProviderUserID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// hydrateUser attaches the refresh-token set and linked providers to a user row.
func (r *PgxUserRepository) hydrateUser(ctx context.Context, m models.User) (*domain.User, error) {
	user := mapping.ToDomainUser(m)

	tokens, err := r.loadRefreshTokens(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	user.RefreshTokens = tokens

	providers, err := r.loadOAuthProviders(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	user.OAuthProviders = providers

	return &user, nil
}

func (r *PgxUserRepository) loadRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, device, ip_address, created_at, expires_at
		FROM refresh_tokens WHERE user_id = $1 ORDER BY created_at ASC
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh tokens: %w", err)
	}
	defer rows.Close()

	tokens := []models.RefreshToken{}
	for rows.Next() {
		var m models.RefreshToken
		if err := rows.Scan(&m.ID, &m.UserID, &m.TokenHash, &m.Device, &m.IPAddress, &m.CreatedAt, &m.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan refresh token row: %w", err)
		}
		tokens = append(tokens, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating refresh token rows: %w", rows.Err())
	}
	return mapping.ToDomainRefreshTokenSlice(tokens), nil
}

func (r *PgxUserRepository) loadOAuthProviders(ctx context.Context, userID string) ([]domain.OAuthProvider, error) {
	query := `SELECT id, user_id, provider, provider_user_id FROM oauth_providers WHERE user_id = $1`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query oauth providers: %w", err)
	}
	defer rows.Close()

	providers := []models.OAuthProvider{}
	for rows.Next() {
		var m models.OAuthProvider
		if err := rows.Scan(&m.ID, &m.UserID, &m.Provider, &m.ProviderUserID); err != nil {
			return nil, fmt.Errorf("failed to scan oauth provider row: %w", err)
		}
		providers = append(providers, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating oauth provider rows: %w", rows.Err())
	}
	return mapping.ToDomainOAuthProviderSlice(providers), nil
}
