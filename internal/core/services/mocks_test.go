package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kaustubhdw/user_auth_app/internal/core/domain"
	"github.com/kaustubhdw/user_auth_app/internal/dto"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserAndRevokeSessions(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.User, error) {
	args := m.Called(ctx, email, includeDeleted)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, *domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	var token *domain.RefreshToken
	if args.Get(1) != nil {
		token = args.Get(1).(*domain.RefreshToken)
	}
	return user, token, args.Error(2)
}

func (m *MockUserRepository) FindUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	args := m.Called(ctx, tokenHash, now)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByVerificationToken(ctx context.Context, email, tokenHash string, now time.Time) (*domain.User, error) {
	args := m.Called(ctx, email, tokenHash, now)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, search string, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, search, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context, search string) (int64, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, oldTokenHash, newTokenHash string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, oldTokenHash, newTokenHash, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) LinkOAuthProvider(ctx context.Context, userID string, provider domain.OAuthProvider) error {
	args := m.Called(ctx, userID, provider)
	return args.Error(0)
}

// --- Mock ActivityRepository ---

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) SaveActivity(ctx context.Context, activity domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) FindActivities(ctx context.Context, limit, offset int) ([]domain.Activity, error) {
	args := m.Called(ctx, limit, offset)
	var activities []domain.Activity
	if args.Get(0) != nil {
		activities = args.Get(0).([]domain.Activity)
	}
	return activities, args.Error(1)
}

func (m *MockActivityRepository) CountActivities(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- In-memory activity recorder ---

// recordingActivitySvc collects recorded actions so tests can assert on the
// audit trail without wiring mock expectations for every incidental entry.
type recordingActivitySvc struct {
	mu      sync.Mutex
	actions []domain.ActivityAction
}

func (r *recordingActivitySvc) Record(ctx context.Context, userID *string, action domain.ActivityAction, meta dto.RequestMeta, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingActivitySvc) ListActivities(ctx context.Context, params dto.ListActivitiesParams) (*dto.ListActivitiesResponse, error) {
	return &dto.ListActivitiesResponse{}, nil
}

func (r *recordingActivitySvc) recorded() []domain.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityAction, len(r.actions))
	copy(out, r.actions)
	return out
}

func (r *recordingActivitySvc) has(action domain.ActivityAction) bool {
	for _, a := range r.recorded() {
		if a == action {
			return true
		}
	}
	return false
}

// --- Stub EmailSvcFacade ---

type stubEmailSvc struct {
	mu                 sync.Mutex
	verificationTokens []string
	resetTokens        []string
	err                error
}

func (s *stubEmailSvc) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verificationTokens = append(s.verificationTokens, token)
	return s.err
}

func (s *stubEmailSvc) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTokens = append(s.resetTokens, token)
	return s.err
}

func (s *stubEmailSvc) lastVerificationToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.verificationTokens) == 0 {
		return ""
	}
	return s.verificationTokens[len(s.verificationTokens)-1]
}

func (s *stubEmailSvc) lastResetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.resetTokens) == 0 {
		return ""
	}
	return s.resetTokens[len(s.resetTokens)-1]
}

// --- Stub OAuthSvcFacade ---

type stubOAuthSvc struct {
	identity *domain.ExternalIdentity
	err      error
}

func (s *stubOAuthSvc) Exchange(ctx context.Context, provider domain.OAuthProviderName, code string) (*domain.ExternalIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}
