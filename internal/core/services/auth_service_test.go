package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaustubhdw/user_auth_app/internal/apperrors"
	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	portssvc "github.com/kaustubhdw/user_auth_app/internal/core/ports/services"
	"github.com/kaustubhdw/user_auth_app/internal/core/services"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
	"github.com/kaustubhdw/user_auth_app/internal/platform/config"
	"github.com/kaustubhdw/user_auth_app/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "user-auth-app-test",
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
		PasswordPepper:             "test-pepper",
		BcryptCost:                 bcrypt.MinCost,
		MaxLoginAttempts:           5,
		AccountLockDuration:        15 * time.Minute,
		VerificationTokenTTL:       time.Hour,
		ResetTokenTTL:              time.Hour,
	}
}

type AuthServiceTestSuite struct {
	suite.Suite
	cfg          *config.Config
	mockUserRepo *MockUserRepository
	activity     *recordingActivitySvc
	email        *stubEmailSvc
	oauth        *stubOAuthSvc
	tokenSvc     portssvc.TokenSvcFacade
	service      portssvc.AuthSvcFacade
	meta         dto.RequestMeta
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.cfg = testConfig()
	s.mockUserRepo = new(MockUserRepository)
	s.activity = &recordingActivitySvc{}
	s.email = &stubEmailSvc{}
	s.oauth = &stubOAuthSvc{}
	s.tokenSvc = services.NewTokenService(s.cfg)
	s.service = services.NewAuthService(s.cfg, s.mockUserRepo, s.tokenSvc, s.oauth, s.email, s.activity)
	s.meta = dto.RequestMeta{IPAddress: "203.0.113.7", Device: "test-agent"}
}

func (s *AuthServiceTestSuite) hashOf(password string) *string {
	hash, err := utils.HashPassword(password, s.cfg.PasswordPepper, s.cfg.BcryptCost)
	s.Require().NoError(err)
	return &hash
}

func (s *AuthServiceTestSuite) activeUser(password string) *domain.User {
	return &domain.User{
		UserID:          uuid.NewString(),
		Email:           "user@example.com",
		FullName:        "Test User",
		PasswordHash:    s.hashOf(password),
		Role:            domain.RoleUser,
		IsEmailVerified: true,
		IsActive:        true,
		CreatedAt:       time.Now().Add(-24 * time.Hour),
	}
}

// --- Register ---

func (s *AuthServiceTestSuite) TestRegister_NewUser() {
	ctx := context.Background()
	req := dto.RegisterRequest{FullName: "New User", Email: "New@Example.com", Password: "password123"}

	var saved domain.User
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, "new@example.com", true).Return(nil, apperrors.ErrNotFound).Once()
	s.mockUserRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		saved = u
		return true
	})).Return(nil).Once()

	err := s.service.Register(ctx, req, s.meta)

	s.Require().NoError(err)
	s.Equal("new@example.com", saved.Email)
	s.Equal(domain.RoleUser, saved.Role)
	s.True(saved.IsActive)
	s.False(saved.IsEmailVerified)
	s.Require().NotNil(saved.PasswordHash)
	s.NotEqual(req.Password, *saved.PasswordHash)
	s.Require().NotNil(saved.EmailVerificationTokenHash)

	// The emailed token must fingerprint to what was persisted.
	token := s.email.lastVerificationToken()
	s.Require().NotEmpty(token)
	s.Equal(s.tokenSvc.Fingerprint(token), *saved.EmailVerificationTokenHash)

	s.True(s.activity.has(domain.ActionUserCreated))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateActiveEmail() {
	existing := s.activeUser("otherpassword")
	existing.Email = "taken@example.com"
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, "taken@example.com", true).Return(existing, nil).Once()

	err := s.service.Register(context.Background(), dto.RegisterRequest{
		FullName: "Someone", Email: "taken@example.com", Password: "password123",
	}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrDuplicate)
	s.mockUserRepo.AssertNotCalled(s.T(), "SaveUser", mock.Anything, mock.Anything)
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRegister_ResurrectsSoftDeletedAccount() {
	deletedAt := time.Now().Add(-time.Hour)
	existing := s.activeUser("oldpassword")
	existing.DeletedAt = &deletedAt
	existing.IsEmailVerified = true
	existing.LoginAttempts = 3

	var updated domain.User
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, existing.Email, true).Return(existing, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.Register(context.Background(), dto.RegisterRequest{
		FullName: "Back Again", Email: existing.Email, Password: "newpassword1",
	}, s.meta)

	s.Require().NoError(err)
	s.Equal(existing.UserID, updated.UserID)
	s.Nil(updated.DeletedAt)
	s.False(updated.IsEmailVerified)
	s.Zero(updated.LoginAttempts)
	s.Equal("Back Again", updated.FullName)
	s.True(utils.CheckPasswordHash("newpassword1", s.cfg.PasswordPepper, *updated.PasswordHash))
	s.mockUserRepo.AssertExpectations(s.T())
}

// --- VerifyEmail ---

func (s *AuthServiceTestSuite) TestVerifyEmail_ConsumesToken() {
	user := s.activeUser("password123")
	user.IsEmailVerified = false
	token := "raw-verification-token"
	hash := s.tokenSvc.Fingerprint(token)
	expiry := time.Now().Add(time.Hour)
	user.EmailVerificationTokenHash = &hash
	user.EmailVerificationTokenExpiresAt = &expiry

	var updated domain.User
	s.mockUserRepo.On("FindUserByVerificationToken", mock.Anything, user.Email, hash, mock.Anything).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.VerifyEmail(context.Background(), user.Email, token, s.meta)

	s.Require().NoError(err)
	s.True(updated.IsEmailVerified)
	s.Nil(updated.EmailVerificationTokenHash)
	s.Nil(updated.EmailVerificationTokenExpiresAt)
	s.True(s.activity.has(domain.ActionEmailVerified))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestVerifyEmail_UnknownTokenRejected() {
	s.mockUserRepo.On("FindUserByVerificationToken", mock.Anything, "user@example.com", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.VerifyEmail(context.Background(), "user@example.com", "bogus", s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidToken)
}

// --- Login ---

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.activeUser("password123")

	var savedEntry domain.RefreshToken
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.LoginAttempts == 0 && u.LastLoginAt != nil
	})).Return(nil).Once()
	s.mockUserRepo.On("AddRefreshToken", mock.Anything, user.UserID, mock.MatchedBy(func(t domain.RefreshToken) bool {
		savedEntry = t
		return true
	})).Return(nil).Once()

	pair, err := s.service.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "password123"}, s.meta)

	s.Require().NoError(err)
	s.NotEmpty(pair.AccessToken)
	s.NotEmpty(pair.RefreshToken)
	s.Equal(s.tokenSvc.Fingerprint(pair.RefreshToken), savedEntry.TokenHash)
	s.Equal(s.meta.Device, savedEntry.Device)
	s.Equal(s.meta.IPAddress, savedEntry.IPAddress)

	claims, err := utils.ParseAndValidateJWT(pair.AccessToken, s.cfg.JWTSecret)
	s.Require().NoError(err)
	s.Equal(user.UserID, claims.Subject)

	s.True(s.activity.has(domain.ActionLoginSuccess))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogin_UnverifiedEmailStillAllowed() {
	user := s.activeUser("password123")
	user.IsEmailVerified = false

	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockUserRepo.On("AddRefreshToken", mock.Anything, user.UserID, mock.Anything).Return(nil).Once()

	pair, err := s.service.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "password123"}, s.meta)

	s.Require().NoError(err)
	s.NotEmpty(pair.AccessToken)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, "nobody@example.com", false).Return(nil, apperrors.ErrNotFound).Once()

	pair, err := s.service.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "whatever1"}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Nil(pair)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPasswordIncrementsAttempts() {
	user := s.activeUser("password123")
	user.LoginAttempts = 1

	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.LoginAttempts == 2 && u.LockUntil == nil
	})).Return(nil).Once()

	pair, err := s.service.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "wrongpassword"}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Nil(pair)
	s.True(s.activity.has(domain.ActionLoginFailed))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogin_FifthFailureOpensLockWindow() {
	user := s.activeUser("password123")
	user.LoginAttempts = 4

	var updated domain.User
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	_, err := s.service.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "wrongpassword"}, s.meta)

	// The locking attempt itself is still just a bad credential; only later
	// logins inside the window are told the account is locked.
	s.Require().ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.NotErrorIs(err, apperrors.ErrAccountLocked)
	s.Equal(5, updated.LoginAttempts)
	s.Require().NotNil(updated.LockUntil)
	s.True(updated.LockUntil.After(time.Now()))
	s.True(s.activity.has(domain.ActionAccountBlocked))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogin_LockedAccountRejectedBeforePasswordCheck() {
	user := s.activeUser("password123")
	lockUntil := time.Now().Add(10 * time.Minute)
	user.LockUntil = &lockUntil

	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()

	// Even the correct password is rejected while the window is open.
	pair, err := s.service.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "password123"}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrAccountLocked)
	s.Nil(pair)
	s.mockUserRepo.AssertNotCalled(s.T(), "UpdateUser", mock.Anything, mock.Anything)
	s.mockUserRepo.AssertNotCalled(s.T(), "AddRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLogin_InactiveAccountRejected() {
	user := s.activeUser("password123")
	user.IsActive = false

	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()

	_, err := s.service.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "password123"}, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrAccountInactive)
}

// --- RefreshAccessToken ---

func (s *AuthServiceTestSuite) TestRefresh_RotatesInPlace() {
	user := s.activeUser("password123")
	oldToken := "old-refresh-token"
	oldHash := s.tokenSvc.Fingerprint(oldToken)
	entry := &domain.RefreshToken{TokenHash: oldHash, ExpiresAt: time.Now().Add(time.Hour)}

	var newHash string
	s.mockUserRepo.On("FindUserByRefreshTokenHash", mock.Anything, oldHash).Return(user, entry, nil).Once()
	s.mockUserRepo.On("RotateRefreshToken", mock.Anything, oldHash, mock.MatchedBy(func(h string) bool {
		newHash = h
		return true
	}), mock.Anything).Return(true, nil).Once()

	pair, err := s.service.RefreshAccessToken(context.Background(), oldToken, s.meta)

	s.Require().NoError(err)
	s.NotEmpty(pair.AccessToken)
	s.NotEqual(oldToken, pair.RefreshToken)
	s.Equal(s.tokenSvc.Fingerprint(pair.RefreshToken), newHash)
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRefresh_ReplayLosesRace() {
	user := s.activeUser("password123")
	oldToken := "already-rotated-token"
	oldHash := s.tokenSvc.Fingerprint(oldToken)
	entry := &domain.RefreshToken{TokenHash: oldHash, ExpiresAt: time.Now().Add(time.Hour)}

	s.mockUserRepo.On("FindUserByRefreshTokenHash", mock.Anything, oldHash).Return(user, entry, nil).Once()
	s.mockUserRepo.On("RotateRefreshToken", mock.Anything, oldHash, mock.Anything, mock.Anything).Return(false, nil).Once()

	pair, err := s.service.RefreshAccessToken(context.Background(), oldToken, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidToken)
	s.Nil(pair)
}

func (s *AuthServiceTestSuite) TestRefresh_ExpiredEntryReaped() {
	user := s.activeUser("password123")
	oldToken := "expired-token"
	oldHash := s.tokenSvc.Fingerprint(oldToken)
	entry := &domain.RefreshToken{TokenHash: oldHash, ExpiresAt: time.Now().Add(-time.Minute)}

	s.mockUserRepo.On("FindUserByRefreshTokenHash", mock.Anything, oldHash).Return(user, entry, nil).Once()
	s.mockUserRepo.On("DeleteExpiredRefreshTokens", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	_, err := s.service.RefreshAccessToken(context.Background(), oldToken, s.meta)

	s.Require().ErrorIs(err, apperrors.ErrTokenExpired)
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRefresh_UnknownTokenRejected() {
	s.mockUserRepo.On("FindUserByRefreshTokenHash", mock.Anything, mock.Anything).Return(nil, nil, apperrors.ErrNotFound).Once()

	_, err := s.service.RefreshAccessToken(context.Background(), "never-issued", s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidToken)
}

// --- Logout ---

func (s *AuthServiceTestSuite) TestLogout_RemovesPresentedToken() {
	user := s.activeUser("password123")
	token := "session-token"

	s.mockUserRepo.On("RemoveRefreshToken", mock.Anything, user.UserID, s.tokenSvc.Fingerprint(token)).Return(nil).Once()

	err := s.service.Logout(context.Background(), user, token, s.meta)

	s.Require().NoError(err)
	s.True(s.activity.has(domain.ActionLogout))
	s.mockUserRepo.AssertExpectations(s.T())
}

// --- ForgotPassword / ResetPassword ---

func (s *AuthServiceTestSuite) TestForgotPassword_UnknownEmailNotFound() {
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, "ghost@example.com", false).Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.ForgotPassword(context.Background(), "ghost@example.com")

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
	s.Empty(s.email.lastResetToken())
}

func (s *AuthServiceTestSuite) TestForgotPassword_StoresFingerprintOnly() {
	user := s.activeUser("password123")

	var updated domain.User
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.ForgotPassword(context.Background(), user.Email)

	s.Require().NoError(err)
	token := s.email.lastResetToken()
	s.Require().NotEmpty(token)
	s.Require().NotNil(updated.PasswordResetTokenHash)
	s.Equal(s.tokenSvc.Fingerprint(token), *updated.PasswordResetTokenHash)
	s.NotEqual(token, *updated.PasswordResetTokenHash)
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestResetPassword_ReplacesHashAndRevokesSessions() {
	user := s.activeUser("oldpassword1")
	token := "reset-token"
	hash := s.tokenSvc.Fingerprint(token)
	expiry := time.Now().Add(time.Hour)
	user.PasswordResetTokenHash = &hash
	user.PasswordResetTokenExpiresAt = &expiry
	user.LoginAttempts = 5
	lockUntil := time.Now().Add(5 * time.Minute)
	user.LockUntil = &lockUntil
	user.RefreshTokens = []domain.RefreshToken{
		{TokenHash: "session-a"},
		{TokenHash: "session-b"},
	}

	var updated domain.User
	s.mockUserRepo.On("FindUserByResetTokenHash", mock.Anything, hash, mock.Anything).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUserAndRevokeSessions", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.ResetPassword(context.Background(), token, "brandnewpass1", s.meta)

	s.Require().NoError(err)
	s.True(utils.CheckPasswordHash("brandnewpass1", s.cfg.PasswordPepper, *updated.PasswordHash))
	s.Nil(updated.PasswordResetTokenHash)
	s.Nil(updated.PasswordResetTokenExpiresAt)
	s.Zero(updated.LoginAttempts)
	s.Nil(updated.LockUntil)
	s.True(s.activity.has(domain.ActionPasswordReset))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestResetPassword_ProvisionsPasswordForFederatedAccount() {
	user := s.activeUser("ignored")
	user.PasswordHash = nil // created through OAuth, never had a password
	token := "provision-token"
	hash := s.tokenSvc.Fingerprint(token)
	expiry := time.Now().Add(time.Hour)
	user.PasswordResetTokenHash = &hash
	user.PasswordResetTokenExpiresAt = &expiry

	var updated domain.User
	s.mockUserRepo.On("FindUserByResetTokenHash", mock.Anything, hash, mock.Anything).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUserAndRevokeSessions", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()

	err := s.service.ResetPassword(context.Background(), token, "firstpassword1", s.meta)

	s.Require().NoError(err)
	s.Require().NotNil(updated.PasswordHash)
	s.True(utils.CheckPasswordHash("firstpassword1", s.cfg.PasswordPepper, *updated.PasswordHash))
}

func (s *AuthServiceTestSuite) TestResetPassword_UnknownOrExpiredTokenRejected() {
	s.mockUserRepo.On("FindUserByResetTokenHash", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.ResetPassword(context.Background(), "stale-token", "whatever123", s.meta)

	s.Require().ErrorIs(err, apperrors.ErrInvalidToken)
}

// --- OAuthLogin ---

func (s *AuthServiceTestSuite) TestOAuthLogin_CreatesAndLinksNewAccount() {
	s.oauth.identity = &domain.ExternalIdentity{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: "google-123",
		Email:          "Fed@Example.com",
		FullName:       "Federated User",
		Verified:       true,
	}

	var saved domain.User
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, "fed@example.com", false).Return(nil, apperrors.ErrNotFound).Once()
	s.mockUserRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		saved = u
		return true
	})).Return(nil).Once()
	s.mockUserRepo.On("LinkOAuthProvider", mock.Anything, mock.Anything, domain.OAuthProvider{
		Provider: domain.ProviderGoogle, ProviderUserID: "google-123",
	}).Return(nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockUserRepo.On("AddRefreshToken", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := s.service.OAuthLogin(context.Background(), domain.ProviderGoogle, "auth-code", s.meta)

	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.Equal("fed@example.com", resp.User.Email)
	s.Nil(saved.PasswordHash)
	s.True(saved.IsEmailVerified)
	s.True(s.activity.has(domain.ActionUserCreated))
	s.True(s.activity.has(domain.ActionLoginSuccess))
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestOAuthLogin_LinksProviderToExistingAccount() {
	user := s.activeUser("password123")
	user.IsEmailVerified = false
	s.oauth.identity = &domain.ExternalIdentity{
		Provider:       domain.ProviderGitHub,
		ProviderUserID: "gh-42",
		Email:          user.Email,
		FullName:       "Test User",
		Verified:       true,
	}

	var updated domain.User
	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("LinkOAuthProvider", mock.Anything, user.UserID, domain.OAuthProvider{
		Provider: domain.ProviderGitHub, ProviderUserID: "gh-42",
	}).Return(nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		updated = u
		return true
	})).Return(nil).Once()
	s.mockUserRepo.On("AddRefreshToken", mock.Anything, user.UserID, mock.Anything).Return(nil).Once()

	resp, err := s.service.OAuthLogin(context.Background(), domain.ProviderGitHub, "auth-code", s.meta)

	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	// The provider vouched for the address, so verification is carried over.
	s.True(updated.IsEmailVerified)
	s.mockUserRepo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestOAuthLogin_SkipsLinkingWhenAlreadyLinked() {
	user := s.activeUser("password123")
	user.OAuthProviders = []domain.OAuthProvider{{Provider: domain.ProviderGoogle, ProviderUserID: "google-123"}}
	s.oauth.identity = &domain.ExternalIdentity{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: "google-123",
		Email:          user.Email,
		Verified:       true,
	}

	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()
	s.mockUserRepo.On("UpdateUser", mock.Anything, mock.Anything).Return(nil).Once()
	s.mockUserRepo.On("AddRefreshToken", mock.Anything, user.UserID, mock.Anything).Return(nil).Once()

	_, err := s.service.OAuthLogin(context.Background(), domain.ProviderGoogle, "auth-code", s.meta)

	s.Require().NoError(err)
	s.mockUserRepo.AssertNotCalled(s.T(), "LinkOAuthProvider", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestOAuthLogin_InactiveAccountRejected() {
	user := s.activeUser("password123")
	user.IsActive = false
	s.oauth.identity = &domain.ExternalIdentity{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: "google-123",
		Email:          user.Email,
		Verified:       true,
	}

	s.mockUserRepo.On("FindUserByEmail", mock.Anything, user.Email, false).Return(user, nil).Once()

	_, err := s.service.OAuthLogin(context.Background(), domain.ProviderGoogle, "auth-code", s.meta)

	s.Require().ErrorIs(err, apperrors.ErrAccountInactive)
}

func (s *AuthServiceTestSuite) TestOAuthLogin_MissingEmailRejected() {
	s.oauth.identity = &domain.ExternalIdentity{
		Provider:       domain.ProviderGitHub,
		ProviderUserID: "gh-42",
	}

	_, err := s.service.OAuthLogin(context.Background(), domain.ProviderGitHub, "auth-code", s.meta)

	s.Require().ErrorIs(err, apperrors.ErrOAuth)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
