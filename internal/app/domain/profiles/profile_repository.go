package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

// DB is the slice of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

type ProfileRepo interface {
	// GetProfile fetches the profile row for a user.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// UpdateProfile applies the non-nil fields. The row is created when the
	// user has no profile yet.
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) error
}

type PostgresProfileRepo struct {
	logger *zap.Logger
	db     DB
}

func NewPostgresProfileRepo(db DB, logger *zap.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		logger: logger,
		db:     db,
	}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GetProfile implements ProfileRepo.
func (r *PostgresProfileRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query, args, err := psql.
		Select("user_id", "full_name", "email", "phone", "passport_number", "date_of_birth", "nationality").
		From("profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var p models.Profile
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&p.UserID, &p.FullName, &p.Email, &p.Phone, &p.PassportNumber, &p.DateOfBirth, &p.Nationality,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile for user %s not found: %w", userID, models.ErrNotFound)
		}
		r.logger.Error("Error fetching profile", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("database error fetching profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile implements ProfileRepo. Column names come from the service's
// fixed field map, never from user input.
func (r *PostgresProfileRepo) UpdateProfile(ctx context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	builder := psql.Update("profiles").Where(sq.Eq{"user_id": userID}).Set("updated_at", time.Now())
	for column, value := range fields {
		builder = builder.Set(column, value)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Error updating profile", zap.Error(err), zap.String("userID", userID))
		return fmt.Errorf("database error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Signup creates the row, but tolerate accounts that predate that.
		insert := `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
		if _, err := r.db.Exec(ctx, insert, userID); err != nil {
			return fmt.Errorf("database error creating profile: %w", err)
		}
		if _, err := r.db.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("database error updating profile: %w", err)
		}
	}
	return nil
}
