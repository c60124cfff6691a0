package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagent/voyagent/internal/models"
	"github.com/voyagent/voyagent/internal/pkg/config"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) Register(ctx context.Context, email, hashedPassword, fullName string) (string, error) {
	args := m.Called(ctx, email, hashedPassword, fullName)
	return args.String(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:      "test-access-secret",
			AccessTokenTTL: 15 * time.Minute,
			Issuer:         "test-issuer",
		},
	}
}

func TestLogin(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := zap.NewNop()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		email := "test@example.com"
		password := "password123"
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		assert.NoError(t, err)

		uid := uuid.New()
		user := &models.UserAuth{
			ID:           uid,
			Email:        email,
			PasswordHash: string(hashedPassword),
		}

		mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil).Once()

		got, token, err := service.Login(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, uid.String(), got.ID)
		assert.Equal(t, email, got.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		ctx := context.Background()
		email := "nonexistent@example.com"

		mockRepo.On("GetUserByEmail", ctx, email).Return(nil, models.ErrNotFound).Once()

		got, token, err := service.Login(ctx, email, "password123")

		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Empty(t, token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidPassword", func(t *testing.T) {
		ctx := context.Background()
		email := "test@example.com"
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)
		assert.NoError(t, err)

		user := &models.UserAuth{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: string(hashedPassword),
		}

		mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil).Once()

		got, token, err := service.Login(ctx, email, "wrongpassword")

		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Empty(t, token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestRegister(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := zap.NewNop()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()

		// The service must hash before hitting the repository; capture the
		// argument and verify it is a valid bcrypt hash of the input.
		mockRepo.On("Register", ctx, "new@example.com", mock.AnythingOfType("string"), "Ada Lovelace").
			Run(func(args mock.Arguments) {
				hashed := args.String(2)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("secret123")))
			}).
			Return("user456", nil).Once()

		userID, err := service.Register(ctx, "new@example.com", "secret123", "Ada Lovelace")

		assert.NoError(t, err)
		assert.Equal(t, "user456", userID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		_, err := service.Register(context.Background(), "", "secret123", "")
		assert.ErrorIs(t, err, models.ErrBadRequest)

		_, err = service.Register(context.Background(), "a@b.com", "", "")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		ctx := context.Background()
		mockRepo.On("Register", ctx, "dup@example.com", mock.AnythingOfType("string"), "").
			Return("", models.ErrConflict).Once()

		_, err := service.Register(ctx, "dup@example.com", "secret123", "")
		assert.ErrorIs(t, err, models.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	service := NewAuthService(new(MockAuthRepo), testConfig(), zap.NewNop())

	token, err := service.GenerateToken("user789", "who@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user789", claims.UserID)
	assert.Equal(t, "who@example.com", claims.Email)

	_, err = service.ValidateToken(token + "tampered")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
