package services_test

import (
	"testing"
	"time"

	"unishopper/internal/models"
	"unishopper/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAdminRepository is a mock implementation of repositories.AdminRepository.
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(admin *models.Admin) error {
	args := m.Called(admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByEmail(email string) (*models.Admin, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByID(id string) (*models.Admin, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) UpdateLoginState(id string, attempts int, lockedUntil *time.Time) error {
	args := m.Called(id, attempts, lockedUntil)
	return args.Error(0)
}

func (m *MockAdminRepository) CreateSession(session *models.AdminSession) error {
	args := m.Called(session)
	if session.ID == "" {
		session.ID = "session-1"
	}
	return args.Error(0)
}

func (m *MockAdminRepository) GetSession(id string) (*models.AdminSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminSession), args.Error(1)
}

func (m *MockAdminRepository) DeleteSession(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAdminRepository) CreateAuditLog(entry *models.AdminAuditLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func testAdmin(t *testing.T) *models.Admin {
	return &models.Admin{
		ID:       "admin-1",
		Email:    "ops@unishopper.com",
		Password: hashPassword(t, "hunter2"),
		Role:     "operator",
	}
}

func TestAdminAuthService_Login(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	repo.On("UpdateLoginState", admin.ID, 0, (*time.Time)(nil)).Return(nil).Once()
	repo.On("CreateSession", mock.MatchedBy(func(s *models.AdminSession) bool {
		return s.AdminID == admin.ID && s.IP == "10.0.0.1" && s.ExpiresAt.After(time.Now())
	})).Return(nil).Once()
	repo.On("CreateAuditLog", mock.MatchedBy(func(e *models.AdminAuditLog) bool {
		return e.Action == "admin.login" && e.AdminID == admin.ID
	})).Return(nil).Once()

	token, loggedIn, err := service.Login(admin.Email, "hunter2", "10.0.0.1", "curl/8")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, admin.ID, loggedIn.ID)
	repo.AssertExpectations(t)
}

func TestAdminAuthService_Login_WrongPasswordCountsAttempt(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)
	admin.LoginAttempts = 2

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	repo.On("UpdateLoginState", admin.ID, 3, (*time.Time)(nil)).Return(nil).Once()
	repo.On("CreateAuditLog", mock.MatchedBy(func(e *models.AdminAuditLog) bool {
		return e.Action == "admin.login_failed"
	})).Return(nil).Once()

	_, _, err := service.Login(admin.Email, "wrong", "10.0.0.1", "curl/8")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything)
}

func TestAdminAuthService_Login_FifthFailureLocks(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)
	admin.LoginAttempts = 4

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	// The lock resets the counter and sets the unlock time.
	repo.On("UpdateLoginState", admin.ID, 0, mock.MatchedBy(func(ts *time.Time) bool {
		return ts != nil && ts.After(time.Now())
	})).Return(nil).Once()
	repo.On("CreateAuditLog", mock.Anything).Return(nil)

	_, _, err := service.Login(admin.Email, "wrong", "10.0.0.1", "curl/8")
	assert.ErrorIs(t, err, services.ErrAccountLocked)
	repo.AssertExpectations(t)
}

func TestAdminAuthService_Login_LockedAccountRejected(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)
	until := time.Now().Add(10 * time.Minute)
	admin.LockedUntil = &until

	repo.On("GetByEmail", admin.Email).Return(admin, nil)

	// Even the correct password is rejected while locked.
	_, _, err := service.Login(admin.Email, "hunter2", "10.0.0.1", "curl/8")
	assert.ErrorIs(t, err, services.ErrAccountLocked)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything)
}

func TestAdminAuthService_Login_ExpiredLockClears(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)
	until := time.Now().Add(-time.Minute)
	admin.LockedUntil = &until

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	repo.On("UpdateLoginState", admin.ID, 0, (*time.Time)(nil)).Return(nil).Once()
	repo.On("CreateSession", mock.Anything).Return(nil).Once()
	repo.On("CreateAuditLog", mock.Anything).Return(nil)

	token, _, err := service.Login(admin.Email, "hunter2", "10.0.0.1", "curl/8")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAdminAuthService_ValidateSession(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	repo.On("UpdateLoginState", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateSession", mock.Anything).Return(nil)
	repo.On("CreateAuditLog", mock.Anything).Return(nil)
	repo.On("GetByID", admin.ID).Return(admin, nil)
	repo.On("GetSession", "session-1").Return(&models.AdminSession{
		ID:        "session-1",
		AdminID:   admin.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	token, _, err := service.Login(admin.Email, "hunter2", "10.0.0.1", "curl/8")
	assert.NoError(t, err)

	validated, session, err := service.ValidateSession(token)
	assert.NoError(t, err)
	assert.Equal(t, admin.ID, validated.ID)
	assert.Equal(t, "session-1", session.ID)
}

func TestAdminAuthService_ValidateSession_ExpiredSessionRow(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	repo.On("UpdateLoginState", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateSession", mock.Anything).Return(nil)
	repo.On("CreateAuditLog", mock.Anything).Return(nil)
	repo.On("GetSession", "session-1").Return(&models.AdminSession{
		ID:        "session-1",
		AdminID:   admin.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	token, _, err := service.Login(admin.Email, "hunter2", "10.0.0.1", "curl/8")
	assert.NoError(t, err)

	_, _, err = service.ValidateSession(token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestAdminAuthService_Logout(t *testing.T) {
	repo := new(MockAdminRepository)
	service := services.NewAdminAuthService(repo, "admin-secret")
	admin := testAdmin(t)

	repo.On("GetByEmail", admin.Email).Return(admin, nil)
	repo.On("UpdateLoginState", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateSession", mock.Anything).Return(nil)
	repo.On("CreateAuditLog", mock.Anything).Return(nil)
	repo.On("GetByID", admin.ID).Return(admin, nil)
	repo.On("GetSession", "session-1").Return(&models.AdminSession{
		ID:        "session-1",
		AdminID:   admin.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	repo.On("DeleteSession", "session-1").Return(nil).Once()

	token, _, err := service.Login(admin.Email, "hunter2", "10.0.0.1", "curl/8")
	assert.NoError(t, err)

	assert.NoError(t, service.Logout(token, "10.0.0.1", "curl/8"))
	repo.AssertExpectations(t)
}
