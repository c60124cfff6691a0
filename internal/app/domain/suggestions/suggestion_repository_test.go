package suggestions

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

const listSuggestionsQuery = `
		SELECT id, conversation_id, category, title, description, price, rating, image_url, booking_url, location, created_at
		FROM travel_suggestions
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

var testConvID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func TestListByConversation(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	price := 640.5
	rating := 4.2
	now := time.Now()

	mockPool.ExpectQuery(regexp.QuoteMeta(listSuggestionsQuery)).
		WithArgs(testConvID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "conversation_id", "category", "title", "description",
			"price", "rating", "image_url", "booking_url", "location", "created_at",
		}).AddRow(
			uuid.New(), testConvID, models.CategoryHotel, "Hotel Roma", "4 stars",
			&price, &rating, "https://img.test/hotel.jpg", "https://booking.test", []byte(`{"address":"Rome, Italy"}`), now,
		).AddRow(
			uuid.New(), testConvID, models.CategoryFlight, "Flight LHR to FCO", "",
			nil, nil, "", "https://flights.test", []byte(`{"origin":"LHR","destination":"FCO"}`), now,
		))

	repo := NewPostgresSuggestionRepo(mockPool, zap.NewNop())

	suggestions, err := repo.ListByConversation(context.Background(), testConvID.String())
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	hotel := suggestions[0]
	assert.Equal(t, testConvID, hotel.ConversationID)
	assert.Equal(t, "Hotel Roma", hotel.Title)
	require.NotNil(t, hotel.Price)
	assert.Equal(t, 640.5, *hotel.Price)
	require.NotNil(t, hotel.Location)
	assert.Equal(t, "Rome, Italy", hotel.Location.Address)

	flight := suggestions[1]
	assert.Nil(t, flight.Price)
	require.NotNil(t, flight.Location)
	assert.Equal(t, "LHR", flight.Location.Origin)
	assert.Equal(t, "FCO", flight.Location.Destination)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListByConversationMalformedIDIsNotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresSuggestionRepo(mockPool, zap.NewNop())

	_, err = repo.ListByConversation(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestReplaceForConversation(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	price := 640.5
	suggestion := models.Suggestion{
		Category:    models.CategoryHotel,
		Title:       "Hotel Roma",
		Description: "4 stars",
		Price:       &price,
		ImageURL:    "https://img.test/hotel.jpg",
		BookingURL:  "https://booking.test",
		Location:    &models.SuggestionLocation{Address: "Rome, Italy"},
	}

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM travel_suggestions WHERE conversation_id = $1`)).
		WithArgs(testConvID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mockPool.ExpectExec(regexp.QuoteMeta(`INSERT INTO travel_suggestions`)).
		WithArgs(pgxmock.AnyArg(), testConvID, models.CategoryHotel, "Hotel Roma", "4 stars",
			&price, (*float64)(nil), "https://img.test/hotel.jpg", "https://booking.test", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	repo := NewPostgresSuggestionRepo(mockPool, zap.NewNop())

	err = repo.ReplaceForConversation(context.Background(), testConvID.String(), []models.Suggestion{suggestion})
	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestReplaceForConversationRollsBackOnFailure(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM travel_suggestions WHERE conversation_id = $1`)).
		WithArgs(testConvID).
		WillReturnError(assert.AnError)
	mockPool.ExpectRollback()

	repo := NewPostgresSuggestionRepo(mockPool, zap.NewNop())

	err = repo.ReplaceForConversation(context.Background(), testConvID.String(), nil)
	assert.Error(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
