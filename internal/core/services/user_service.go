package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaustubhdw/user_auth_app/internal/apperrors"
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portsrepo "github.com/kaustubhdw/user_auth_app/internal/core/ports/repositories"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
	"github.com/kaustubhdw/user_auth_app/internal/utils"
)

// userService implements UserSvcFacade: profile self-service plus the admin
// management surface.
type userService struct {
	cfg      *config.Config
	userRepo portsrepo.UserRepository
	activity portssvc.ActivitySvcFacade
}

// NewUserService creates a new instance of userService.
func NewUserService(cfg *config.Config, userRepo portsrepo.UserRepository, activity portssvc.ActivitySvcFacade) portssvc.UserSvcFacade {
	return &userService{cfg: cfg, userRepo: userRepo, activity: activity}
}

// GetUserByID retrieves a non-deleted user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated, optionally filtered list of users.
func (s *userService) ListUsers(ctx context.Context, params dto.ListUsersParams) (*dto.ListUsersResponse, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit
	search := strings.TrimSpace(params.Search)

	users, err := s.userRepo.ListUsers(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	total, err := s.userRepo.CountUsers(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = dto.ToUserResponse(&users[i])
	}

	return &dto.ListUsersResponse{
		Users: responses,
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pageCount(total, limit),
		},
	}, nil
}

// UpdateProfile updates the caller's own name and bio. Omitted fields are
// left unchanged.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest, meta dto.RequestMeta) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionUserUpdated, meta, nil)
	return user, nil
}

// ChangePassword verifies the current password and replaces the hash. Fails
// for accounts that authenticate only through OAuth and have no password to
// verify against.
func (s *userService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest, meta dto.RequestMeta) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.HasPassword() {
		return apperrors.ErrNoPasswordSet
	}
	if !utils.CheckPasswordHash(req.OldPassword, s.cfg.PasswordPepper, *user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if req.OldPassword == req.NewPassword {
		return apperrors.ErrSamePassword
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.cfg.PasswordPepper, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &passwordHash
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionPasswordChange, meta, nil)
	return nil
}

// CreateUser creates a user on behalf of an admin. The password is optional:
// accounts without one authenticate through OAuth until the reset flow
// provisions a password. Admin-created accounts skip email verification.
func (s *userService) CreateUser(ctx context.Context, req dto.AdminCreateUserRequest, creatorUserID string, meta dto.RequestMeta) (*domain.User, error) {
	now := time.Now()

	var passwordHash *string
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password, s.cfg.PasswordPepper, s.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = &hash
	}

	role := domain.RoleUser
	if req.Role == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}

	user := domain.User{
		UserID:          uuid.NewString(),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:        req.FullName,
		PasswordHash:    passwordHash,
		Role:            role,
		IsEmailVerified: true,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionUserCreated, meta, map[string]any{"created_by": creatorUserID})
	return &user, nil
}

// UpdateUser updates selected fields of a user on behalf of an admin.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.AdminUpdateUserRequest, requestingUserID string, meta dto.RequestMeta) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		newEmail := strings.ToLower(strings.TrimSpace(*req.Email))
		if newEmail != user.Email {
			user.Email = newEmail
			// A changed address has not been verified.
			user.IsEmailVerified = false
		}
	}
	if req.Role != nil {
		if requestingUserID == userID && *req.Role != string(user.Role) {
			return nil, fmt.Errorf("%w: admins cannot change their own role", apperrors.ErrValidation)
		}
		user.Role = domain.UserRole(*req.Role)
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password, s.cfg.PasswordPepper, s.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = &hash
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionUserUpdated, meta, map[string]any{"updated_by": requestingUserID})
	return user, nil
}

// DeleteAccount soft-deletes the caller's own account. Re-registration with
// the same email resurrects it.
func (s *userService) DeleteAccount(ctx context.Context, userID string, meta dto.RequestMeta) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	user.DeletedAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUserAndRevokeSessions(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionUserDeleted, meta, nil)
	return nil
}

// DeleteUser marks a user as deleted. The row survives, lookups by email
// exclude it, and re-registration with the same email resurrects it. All
// refresh-token sessions are revoked.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string, meta dto.RequestMeta) error {
	if userID == requestingUserID {
		return fmt.Errorf("%w: admins cannot delete their own account", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	user.DeletedAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUserAndRevokeSessions(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionUserDeleted, meta, map[string]any{"deleted_by": requestingUserID})
	return nil
}

// BlockUser deactivates an account and revokes its sessions.
func (s *userService) BlockUser(ctx context.Context, userID string, requestingUserID string, meta dto.RequestMeta) error {
	if userID == requestingUserID {
		return fmt.Errorf("%w: admins cannot block their own account", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUserAndRevokeSessions(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionAccountBlocked, meta, map[string]any{"blocked_by": requestingUserID})
	return nil
}

// UnblockUser reactivates an account and clears any login lockout.
func (s *userService) UnblockUser(ctx context.Context, userID string, requestingUserID string, meta dto.RequestMeta) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = true
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return err
	}

	s.activity.Record(ctx, &user.UserID, domain.ActionAccountUnblocked, meta, map[string]any{"unblocked_by": requestingUserID})
	return nil
}

var _ portssvc.UserSvcFacade = (*userService)(nil)
