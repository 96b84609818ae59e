package services_test

import (
	"testing"

	"unishopper/internal/models"
	"unishopper/internal/services"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestAuthService_RegisterUser(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewAuthService(repo, "test-secret")

	repo.On("GetByEmail", "karim@example.com").Return(nil, assert.AnError).Once()
	repo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		// The stored password must be a bcrypt hash, not the plaintext.
		return u.Email == "karim@example.com" && u.Password != "s3cret"
	})).Return(nil).Once()

	err := service.RegisterUser(&models.User{Email: "karim@example.com", Password: "s3cret"})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewAuthService(repo, "test-secret")

	repo.On("GetByEmail", "karim@example.com").Return(&models.User{Email: "karim@example.com"}, nil).Once()

	err := service.RegisterUser(&models.User{Email: "karim@example.com", Password: "s3cret"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_LoginUser(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewAuthService(repo, "test-secret")

	user := &models.User{ID: "user-1", Email: "karim@example.com", Password: hashPassword(t, "s3cret")}
	repo.On("GetByEmail", "karim@example.com").Return(user, nil)

	token, err := service.LoginUser("karim@example.com", "s3cret")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "karim@example.com", claims["email"])
}

func TestAuthService_LoginUser_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewAuthService(repo, "test-secret")

	user := &models.User{ID: "user-1", Email: "karim@example.com", Password: hashPassword(t, "s3cret")}
	repo.On("GetByEmail", "karim@example.com").Return(user, nil)

	_, err := service.LoginUser("karim@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_LoginUser_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewAuthService(repo, "test-secret")

	repo.On("GetByEmail", "nobody@example.com").Return(nil, assert.AnError)

	_, err := service.LoginUser("nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_LoginUser_GuestRejected(t *testing.T) {
	repo := new(MockUserRepository)
	service := services.NewAuthService(repo, "test-secret")

	guest := &models.User{ID: "guest-1", Email: "guest-x@guest.unishopper.com", IsGuest: true}
	repo.On("GetByEmail", guest.Email).Return(guest, nil)

	_, err := service.LoginUser(guest.Email, "")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	repo := new(MockUserRepository)
	issuer := services.NewAuthService(repo, "secret-a")
	verifier := services.NewAuthService(repo, "secret-b")

	user := &models.User{ID: "user-1", Email: "karim@example.com", Password: hashPassword(t, "s3cret")}
	repo.On("GetByEmail", "karim@example.com").Return(user, nil)

	token, err := issuer.LoginUser("karim@example.com", "s3cret")
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
