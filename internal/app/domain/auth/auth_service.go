package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagent/voyagent/internal/models"
	"github.com/voyagent/voyagent/internal/pkg/config"
)

// TokenClaims is the decoded access-token payload middleware needs.
type TokenClaims struct {
	UserID string
	Email  string
}

// TokenValidator validates bearer access tokens. Split from AuthService so
// middleware does not depend on the full service surface.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract.
type AuthService interface {
	TokenValidator

	Register(ctx context.Context, email, password, fullName string) (string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GenerateToken(userID, email string) (string, error)
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger *zap.Logger
	repo   AuthRepo
	cfg    *config.Config
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(repo AuthRepo, cfg *config.Config, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, repo: repo, cfg: cfg}
}

// Register hashes the password and stores the user.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, fullName string) (string, error) {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))
	l.Debug("Attempting registration")

	if email == "" || password == "" {
		return "", fmt.Errorf("email and password required: %w", models.ErrBadRequest)
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash password", zap.Error(err))
		return "", fmt.Errorf("could not process password")
	}

	userID, err := s.repo.Register(ctx, email, string(hashedPasswordBytes), fullName)
	if err != nil {
		l.Warn("Repository registration failed", zap.Error(err))
		return "", err
	}

	l.Info("Registration successful", zap.String("userID", userID))
	return userID, nil
}

// Login validates credentials and issues an access token for API clients.
// Session cookies are the handler's business.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))
	l.Debug("Attempting login")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.Warn("GetUserByEmail failed")
		// Don't reveal if the user exists or the password is wrong
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.Warn("Password comparison failed", zap.String("userID", user.ID.String()))
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	token, err := s.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		l.Error("Failed to generate token", zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("app error generating token: %w", err)
	}

	l.Info("Login successful")
	return &models.User{ID: user.ID.String(), Email: user.Email}, token, nil
}

// GetUser returns the public identity for an authenticated user ID.
func (s *AuthServiceImpl) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: user.ID.String(), Email: user.Email}, nil
}

// GenerateToken issues a signed access token for the user.
func (s *AuthServiceImpl) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iss":   s.cfg.JWT.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWT.AccessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken implements TokenValidator.
func (s *AuthServiceImpl) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: %w", models.ErrUnauthenticated)
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token missing subject: %w", models.ErrUnauthenticated)
	}
	return &TokenClaims{UserID: sub, Email: email}, nil
}
