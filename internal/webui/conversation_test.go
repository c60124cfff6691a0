package webui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

// fakeBackend scripts the chat backend for view tests.
type fakeBackend struct {
	conversationID string
	createErr      error
	reply          string
	sendErr        error

	sendCalls    int
	lastMessages []models.Message
	lastLocation *models.GeoPoint
}

func (f *fakeBackend) CreateConversation(ctx context.Context) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.conversationID, nil
}

func (f *fakeBackend) SendMessageWithLocation(ctx context.Context, conversationID string, messages []models.Message, location *models.GeoPoint) (string, error) {
	f.sendCalls++
	f.lastMessages = messages
	f.lastLocation = location
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.reply, nil
}

func TestConversationBegin(t *testing.T) {
	backend := &fakeBackend{conversationID: "c1"}
	v := NewConversationView(backend, zap.NewNop())

	assert.Equal(t, StateUninitialized, v.State())

	err := v.Begin(context.Background(), &models.User{ID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, StateCreated, v.State())
	assert.Equal(t, "c1", v.ConversationID())
	require.Len(t, v.Turns(), 1)
	assert.Equal(t, models.RoleAssistant, v.Turns()[0].Role)
}

func TestConversationBeginWithoutUser(t *testing.T) {
	v := NewConversationView(&fakeBackend{}, zap.NewNop())

	err := v.Begin(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StateUninitialized, v.State())
}

func TestSendGuards(t *testing.T) {
	t.Run("NoConversation", func(t *testing.T) {
		backend := &fakeBackend{}
		v := NewConversationView(backend, zap.NewNop())

		err := v.Send(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Zero(t, backend.sendCalls)
		assert.Empty(t, v.Turns())
	})

	t.Run("BlankInput", func(t *testing.T) {
		backend := &fakeBackend{conversationID: "c1", reply: "hi"}
		v := NewConversationView(backend, zap.NewNop())
		require.NoError(t, v.Begin(context.Background(), &models.User{ID: "u1"}))

		err := v.Send(context.Background(), "   \n ")
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Zero(t, backend.sendCalls)
		assert.Len(t, v.Turns(), 1)
	})
}

func TestSendAppendsBothTurns(t *testing.T) {
	backend := &fakeBackend{conversationID: "c1", reply: "Rome sounds great!"}
	v := NewConversationView(backend, zap.NewNop())
	require.NoError(t, v.Begin(context.Background(), &models.User{ID: "u1"}))

	err := v.Send(context.Background(), "I want to go to Rome")
	require.NoError(t, err)

	assert.Equal(t, StateIdle, v.State())
	turns := v.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, models.RoleUser, turns[1].Role)
	assert.Equal(t, "I want to go to Rome", turns[1].Content)
	assert.Equal(t, "Rome sounds great!", turns[2].Content)

	// The backend saw the welcome turn plus the new user turn.
	require.Len(t, backend.lastMessages, 2)
	assert.Equal(t, models.RoleUser, backend.lastMessages[1].Role)
}

func TestSendFailureKeepsUnconfirmedTurn(t *testing.T) {
	backend := &fakeBackend{conversationID: "c1", sendErr: assert.AnError}
	v := NewConversationView(backend, zap.NewNop())
	require.NoError(t, v.Begin(context.Background(), &models.User{ID: "u1"}))

	err := v.Send(context.Background(), "hello?")
	require.Error(t, err)

	turns := v.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[1].Role)
	assert.True(t, turns[1].Unconfirmed)
	assert.NotEmpty(t, v.Notice())

	// The unconfirmed turn is not replayed on the next send.
	backend.sendErr = nil
	backend.reply = "ok"
	require.NoError(t, v.Send(context.Background(), "are you there?"))
	for _, m := range backend.lastMessages {
		assert.NotEqual(t, "hello?", m.Content)
	}
}

func TestSendLocationBuildsSyntheticTurn(t *testing.T) {
	backend := &fakeBackend{conversationID: "c1", reply: "Nice pick!"}
	v := NewConversationView(backend, zap.NewNop())
	require.NoError(t, v.Begin(context.Background(), &models.User{ID: "u1"}))

	loc := models.GeoPoint{Name: "Lisbon", Latitude: 38.72, Longitude: -9.14}
	require.NoError(t, v.SendLocation(context.Background(), loc))

	turns := v.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "I've chosen Lisbon", turns[1].Content)
	require.NotNil(t, backend.lastLocation)
	assert.Equal(t, 38.72, backend.lastLocation.Latitude)
}

func TestNoticeClearsAfterRead(t *testing.T) {
	backend := &fakeBackend{conversationID: "c1", sendErr: assert.AnError}
	v := NewConversationView(backend, zap.NewNop())
	require.NoError(t, v.Begin(context.Background(), &models.User{ID: "u1"}))
	_ = v.Send(context.Background(), "hi")

	assert.NotEmpty(t, v.Notice())
	assert.Empty(t, v.Notice())
}
