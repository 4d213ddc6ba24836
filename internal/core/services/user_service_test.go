package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kaustubhdw/user_auth_app/internal/apperrors"
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/core/services"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
	"github.com/kaustubhdw/user_auth_app/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	cfg          *config.Config
	mockUserRepo *MockUserRepository
	activity     *recordingActivitySvc
	service      portssvc.UserSvcFacade
	meta         dto.RequestMeta
}

func (s *UserServiceTestSuite) SetupTest() {
	s.cfg = testConfig()
	s.mockUserRepo = new(MockUserRepository)
	s.activity = &recordingActivitySvc{}
	s.service = services.NewUserService(s.cfg, s.mockUserRepo, s.activity)
	s.meta = dto.RequestMeta{IPAddress: "203.0.113.7", Device: "test-agent"}
}

func (s *UserServiceTestSuite) userWithPassword(password string) *domain.User {
	hash, err := utils.HashPassword(password, s.cfg.PasswordPepper, s.cfg.BcryptCost)
	s.Require().NoError(err)
	return &domain.User{
		UserID:       uuid.NewString(),
		Email:        "user@example.com",
		FullName:     "Test User",
		PasswordHash: &hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

// --- UpdateProfile ---

func (s *UserServiceTestSuite) TestUpdateProfile_PartialUpdate() {
	user := s.userWithPassword("password123")
	user.Bio = "old bio"
	newName := "Renamed User"

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	result, err := s.service.UpdateProfile(context.Background(), user.UserID, dto.UpdateProfileRequest{FullName: &newName}, s.meta)

	s.Require().NoError(err)
	s.Equal("Renamed User", result.FullName)
	s.Equal("old bio", updated.Bio) // omitted field untouched
	s.True(s.activity.has(domain.ActionUserUpdated))
	s.mockUserRepo.AssertExpectations(s.T())
}

// --- ChangePassword ---

func (s *UserServiceTestSuite) TestChangePassword_Success() {
	user := s.userWithPassword("oldpassword1")

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.ChangePassword(context.Background(), user.UserID, dto.ChangePasswordRequest{
		OldPassword: "oldpassword1",
		NewPassword: "newpassword1",
	}, s.meta)

	s.Require().NoError(err)
	s.True(utils.CheckPasswordHash("newpassword1", s.cfg.PasswordPepper, *updated.PasswordHash))
	s.True(s.activity.has(domain.ActionPasswordChange))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestChangePassword_WrongOldPassword() {
	user := s.userWithPassword("oldpassword1")
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()

	err := s.service.ChangePassword(context.Background(), user.UserID, dto.ChangePasswordRequest{
		OldPassword: "notit",
		NewPassword: "newpassword1",
	}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.mockUserRepo.AssertNotCalled(s.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (s *UserServiceTestSuite) TestChangePassword_SamePasswordRejected() {
	user := s.userWithPassword("samepassword1")
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()

	err := s.service.ChangePassword(context.Background(), user.UserID, dto.ChangePasswordRequest{
		OldPassword: "samepassword1",
		NewPassword: "samepassword1",
	}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrSamePassword)
}

func (s *UserServiceTestSuite) TestChangePassword_FederatedAccountHasNoPassword() {
	user := s.userWithPassword("ignored")
	user.PasswordHash = nil
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()

	err := s.service.ChangePassword(context.Background(), user.UserID, dto.ChangePasswordRequest{
		OldPassword: "anything1",
		NewPassword: "newpassword1",
	}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrNoPasswordSet)
}

// --- Admin CreateUser / UpdateUser ---

func (s *UserServiceTestSuite) TestCreateUser_WithoutPassword() {
	var saved domain.User
	s.mockUserRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		saved = u
		return true
	})).Return(nil).Once()

	user, err := s.service.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		FullName: "No Password",
		Email:    "NoPass@Example.com",
		Role:     "admin",
	}, "admin-1", s.meta)

	s.Require().NoError(err)
	s.Equal("nopass@example.com", user.Email)
	s.Equal(domain.RoleAdmin, user.Role)
	s.Nil(saved.PasswordHash)
	s.True(saved.IsEmailVerified)
	s.True(s.activity.has(domain.ActionUserCreated))
}

func (s *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	s.mockUserRepo.On("SaveUser", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		FullName: "Duplicate",
		Email:    "dup@example.com",
	}, "admin-1", s.meta)

	s.Require().ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestUpdateUser_EmailChangeResetsVerification() {
	user := s.userWithPassword("password123")
	user.IsEmailVerified = true
	newEmail := "Changed@Example.com"

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	_, err := s.service.UpdateUser(context.Background(), user.UserID, dto.AdminUpdateUserRequest{Email: &newEmail}, "admin-1", s.meta)

	s.Require().NoError(err)
	s.Equal("changed@example.com", updated.Email)
	s.False(updated.IsEmailVerified)
}

func (s *UserServiceTestSuite) TestUpdateUser_SelfRoleChangeRejected() {
	user := s.userWithPassword("password123")
	user.Role = domain.RoleAdmin
	newRole := "user"

	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()

	_, err := s.service.UpdateUser(context.Background(), user.UserID, dto.AdminUpdateUserRequest{Role: &newRole}, user.UserID, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.mockUserRepo.AssertNotCalled(s.T(), "UpdateUser", mock.Anything, mock.Anything)
}

// --- Lifecycle ---

func (s *UserServiceTestSuite) TestDeleteUser_SoftDeletesAndRevokesSessions() {
	user := s.userWithPassword("password123")
	user.RefreshTokens = []domain.RefreshToken{{TokenHash: "session-a"}}

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUserAndRevokeSessions", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.DeleteUser(context.Background(), user.UserID, "admin-1", s.meta)

	s.Require().NoError(err)
	s.Require().NotNil(updated.DeletedAt)
	s.WithinDuration(time.Now(), *updated.DeletedAt, 2*time.Second)
	s.True(s.activity.has(domain.ActionUserDeleted))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestDeleteUser_SelfDeleteRejected() {
	err := s.service.DeleteUser(context.Background(), "admin-1", "admin-1", s.meta)
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestDeleteAccount_AllowsOwnAccount() {
	user := s.userWithPassword("password123")
	user.RefreshTokens = []domain.RefreshToken{{TokenHash: "session-a"}}

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUserAndRevokeSessions", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.DeleteAccount(context.Background(), user.UserID, s.meta)

	s.Require().NoError(err)
	s.Require().NotNil(updated.DeletedAt)
	s.True(s.activity.has(domain.ActionUserDeleted))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestBlockUser_DeactivatesAccount() {
	user := s.userWithPassword("password123")
	user.RefreshTokens = []domain.RefreshToken{{TokenHash: "session-a"}}

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUserAndRevokeSessions", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.BlockUser(context.Background(), user.UserID, "admin-1", s.meta)

	s.Require().NoError(err)
	s.False(updated.IsActive)
	s.True(s.activity.has(domain.ActionAccountBlocked))
}

func (s *UserServiceTestSuite) TestBlockUser_SelfBlockRejected() {
	err := s.service.BlockUser(context.Background(), "admin-1", "admin-1", s.meta)
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestUnblockUser_ClearsLockout() {
	user := s.userWithPassword("password123")
	user.IsActive = false
	user.LoginAttempts = 5
	lockUntil := time.Now().Add(10 * time.Minute)
	user.LockUntil = &lockUntil

	var updated domain.User
	s.mockUserRepo.On("FindUserByID", mock.Anything, user.UserID).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.UnblockUser(context.Background(), user.UserID, "admin-1", s.meta)

	s.Require().NoError(err)
	s.True(updated.IsActive)
	s.Zero(updated.LoginAttempts)
	s.Nil(updated.LockUntil)
	s.True(s.activity.has(domain.ActionAccountUnblocked))
}

// --- ListUsers ---

func (s *UserServiceTestSuite) TestListUsers_Pagination() {
	users := []domain.User{
		{UserID: uuid.NewString(), Email: "a@example.com"},
		{UserID: uuid.NewString(), Email: "b@example.com"},
	}
	s.mockUserRepo.On("ListUsers", mock.Anything, "smith", 10, 10).Return(users, nil).Once()
	s.mockUserRepo.On("CountUsers", mock.Anything, "smith").Return(int64(25), nil).Once()

	resp, err := s.service.ListUsers(context.Background(), dto.ListUsersParams{Page: 2, Limit: 10, Search: "smith"})

	s.Require().NoError(err)
	s.Len(resp.Users, 2)
	s.Equal(2, resp.Pagination.Page)
	s.Equal(int64(25), resp.Pagination.Total)
	s.Equal(int64(3), resp.Pagination.Pages)
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestListUsers_ClampsBadParams() {
	s.mockUserRepo.On("ListUsers", mock.Anything, "", 50, 0).Return([]domain.User{}, nil).Once()
	s.mockUserRepo.On("CountUsers", mock.Anything, "").Return(int64(0), nil).Once()

	resp, err := s.service.ListUsers(context.Background(), dto.ListUsersParams{Page: -3, Limit: 0})

	s.Require().NoError(err)
	s.Equal(1, resp.Pagination.Page)
	s.Equal(50, resp.Pagination.Limit)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
