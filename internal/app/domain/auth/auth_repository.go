package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

type AuthRepo interface {
	// GetUserByEmail fetches user details needed for credential validation.
	GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	// GetUserByID fetches user details by ID.
	GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error)
	// Register stores a new user with a HASHED password plus an initial
	// profile row. Returns the new user ID.
	Register(ctx context.Context, email, hashedPassword, fullName string) (string, error)
}

type PostgresAuthRepo struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgpool *pgxpool.Pool, logger *zap.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// GetUserByEmail implements AuthRepo.
func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	var user models.UserAuth
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1 AND is_active = TRUE`
	err := r.pgpool.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, models.ErrNotFound)
		}
		r.logger.Error("Error fetching user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}

// GetUserByID implements AuthRepo.
func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		// A malformed id can never name an existing row.
		return nil, fmt.Errorf("user with ID %s not found: %w", userID, models.ErrNotFound)
	}

	var user models.UserAuth
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1 AND is_active = TRUE`
	err = r.pgpool.QueryRow(ctx, query, uid).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %s not found: %w", userID, models.ErrNotFound)
		}
		r.logger.Error("Error fetching user by ID", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("database error fetching user by ID: %w", err)
	}
	return &user, nil
}

// Register implements AuthRepo. Expects a HASHED password. User and profile
// rows are created in one transaction so a half-registered account can never
// exist.
func (r *PostgresAuthRepo) Register(ctx context.Context, email, hashedPassword, fullName string) (string, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("database error starting registration: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	userQuery := `INSERT INTO users (email, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`
	err = tx.QueryRow(ctx, userQuery, email, hashedPassword, time.Now()).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("email already exists: %w", models.ErrConflict)
		}
		r.logger.Error("Error inserting user", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("database error registering user: %w", err)
	}

	profileQuery := `INSERT INTO profiles (user_id, email, full_name) VALUES ($1, $2, NULLIF($3, ''))`
	if _, err = tx.Exec(ctx, profileQuery, userID, email, fullName); err != nil {
		r.logger.Error("Error inserting initial profile", zap.Error(err), zap.String("userID", userID.String()))
		return "", fmt.Errorf("database error creating profile: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("database error finishing registration: %w", err)
	}

	r.logger.Info("User registered successfully", zap.String("userID", userID.String()))
	return userID.String(), nil
}
