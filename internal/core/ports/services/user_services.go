package services

import (
	"context"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	// GetUserByID retrieves a non-deleted user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves a paginated, optionally filtered list of users.
	ListUsers(ctx context.Context, params dto.ListUsersParams) (*dto.ListUsersResponse, error)
}

// UserWriterSvc defines write operations for user data.
type UserWriterSvc interface {
	// UpdateProfile updates the caller's own name and bio.
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest, meta dto.RequestMeta) (*domain.User, error)

	// ChangePassword verifies the old password and replaces the hash.
	ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest, meta dto.RequestMeta) error

	// CreateUser creates a user on behalf of an admin.
	CreateUser(ctx context.Context, req dto.AdminCreateUserRequest, creatorUserID string, meta dto.RequestMeta) (*domain.User, error)

	// UpdateUser updates selected fields of a user on behalf of an admin.
	UpdateUser(ctx context.Context, userID string, req dto.AdminUpdateUserRequest, requestingUserID string, meta dto.RequestMeta) (*domain.User, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle.
type UserLifecycleSvc interface {
	// DeleteAccount soft-deletes the caller's own account and revokes its
	// sessions.
	DeleteAccount(ctx context.Context, userID string, meta dto.RequestMeta) error

	// DeleteUser marks a user as deleted (soft delete). Lookups by email
	// exclude the record afterwards; re-registration resurrects it.
	DeleteUser(ctx context.Context, userID string, requestingUserID string, meta dto.RequestMeta) error

	// BlockUser deactivates an account.
	BlockUser(ctx context.Context, userID string, requestingUserID string, meta dto.RequestMeta) error

	// UnblockUser reactivates an account and clears any login lockout.
	UnblockUser(ctx context.Context, userID string, requestingUserID string, meta dto.RequestMeta) error
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
}
