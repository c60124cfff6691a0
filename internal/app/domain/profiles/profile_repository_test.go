package profiles

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

func newMockRepo(t *testing.T) (*PostgresProfileRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresProfileRepo(mockPool, zap.NewNop()), mockPool
}

func TestGetProfile(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		fullName := "Grace Hopper"
		dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)

		rows := pgxmock.NewRows([]string{"user_id", "full_name", "email", "phone", "passport_number", "date_of_birth", "nationality"}).
			AddRow("u1", &fullName, (*string)(nil), (*string)(nil), (*string)(nil), &dob, (*string)(nil))

		mockPool.ExpectQuery(regexp.QuoteMeta(
			`SELECT user_id, full_name, email, phone, passport_number, date_of_birth, nationality FROM profiles WHERE user_id = $1`,
		)).WithArgs("u1").WillReturnRows(rows)

		profile, err := repo.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", profile.UserID)
		require.NotNil(t, profile.FullName)
		assert.Equal(t, "Grace Hopper", *profile.FullName)
		require.NotNil(t, profile.DateOfBirth)
		assert.Equal(t, dob, *profile.DateOfBirth)
		assert.Nil(t, profile.Phone)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT user_id,").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetProfile(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestUpdateProfile(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()

	t.Run("SingleField", func(t *testing.T) {
		mockPool.ExpectExec("UPDATE profiles SET").
			WithArgs(pgxmock.AnyArg(), "Grace Hopper", "u1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateProfile(ctx, "u1", map[string]any{"full_name": "Grace Hopper"})
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("CreatesMissingRow", func(t *testing.T) {
		mockPool.ExpectExec("UPDATE profiles SET").
			WithArgs(pgxmock.AnyArg(), "PT", "u2").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectExec(regexp.QuoteMeta(
			`INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		)).WithArgs("u2").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectExec("UPDATE profiles SET").
			WithArgs(pgxmock.AnyArg(), "PT", "u2").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateProfile(ctx, "u2", map[string]any{"nationality": "PT"})
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NoFields", func(t *testing.T) {
		err := repo.UpdateProfile(ctx, "u1", nil)
		assert.NoError(t, err)
	})
}
