// Package webui holds the server-owned view state behind the dashboard
// pages: the conversation transcript, the polling suggestions panel and the
// composition root that ties them to a session.
package webui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

// Conversation view states.
type ConversationState int

const (
	StateUninitialized ConversationState = iota
	StateCreated
	StateSending
	StateIdle
)

var (
	ErrNotReady   = errors.New("conversation not ready")
	ErrEmptyInput = errors.New("input is empty")
)

const welcomeMessage = "Hi! I'm your travel assistant. Where would you like to go?"

// ChatBackend is the slice of the API client the conversation view uses.
type ChatBackend interface {
	CreateConversation(ctx context.Context) (string, error)
	SendMessageWithLocation(ctx context.Context, conversationID string, messages []models.Message, location *models.GeoPoint) (string, error)
}

// Turn is one rendered transcript entry. Unconfirmed marks a user turn whose
// send failed: the optimistic append is kept, not rolled back.
type Turn struct {
	Role        string
	Content     string
	Unconfirmed bool
}

// ConversationView owns one conversation's transcript and send state. All
// methods must be called from the owning session's handler goroutine; the
// view itself does no locking.
type ConversationView struct {
	backend ChatBackend
	logger  *zap.Logger

	state          ConversationState
	conversationID string
	user           *models.User
	turns          []Turn
	notice         string
}

func NewConversationView(backend ChatBackend, logger *zap.Logger) *ConversationView {
	return &ConversationView{backend: backend, logger: logger}
}

func (v *ConversationView) State() ConversationState { return v.state }
func (v *ConversationView) ConversationID() string   { return v.conversationID }
func (v *ConversationView) Turns() []Turn            { return v.turns }

// Sending reports whether a send is outstanding; the template disables the
// send control while true.
func (v *ConversationView) Sending() bool { return v.state == StateSending }

// Notice returns and clears the transient failure notice.
func (v *ConversationView) Notice() string {
	n := v.notice
	v.notice = ""
	return n
}

// Begin creates the backend conversation for the identified user and seeds
// the welcome turn.
func (v *ConversationView) Begin(ctx context.Context, user *models.User) error {
	if v.state != StateUninitialized {
		return nil
	}
	if user == nil {
		return ErrNotReady
	}

	id, err := v.backend.CreateConversation(ctx)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	v.user = user
	v.conversationID = id
	v.turns = []Turn{{Role: models.RoleAssistant, Content: welcomeMessage}}
	v.state = StateCreated
	return nil
}

// Send submits one user turn. It no-ops with an error when there is no
// conversation, no user, or the input is blank. The user turn is appended
// optimistically and stays in the transcript even if the send fails, flagged
// unconfirmed.
func (v *ConversationView) Send(ctx context.Context, input string) error {
	return v.send(ctx, input, nil)
}

// SendLocation converts a picked location into the synthetic turn
// "I've chosen {name}" and sends it through the same path as typed input,
// forwarding the coordinates.
func (v *ConversationView) SendLocation(ctx context.Context, loc models.GeoPoint) error {
	return v.send(ctx, fmt.Sprintf("I've chosen %s", loc.Name), &loc)
}

func (v *ConversationView) send(ctx context.Context, input string, location *models.GeoPoint) error {
	if v.conversationID == "" || v.user == nil {
		return ErrNotReady
	}
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}

	v.turns = append(v.turns, Turn{Role: models.RoleUser, Content: input})
	v.state = StateSending

	reply, err := v.backend.SendMessageWithLocation(ctx, v.conversationID, v.transcript(), location)
	v.state = StateIdle
	if err != nil {
		v.turns[len(v.turns)-1].Unconfirmed = true
		v.notice = "Message failed to send. Please try again."
		v.logger.Warn("Send failed",
			zap.Error(err), zap.String("conversationID", v.conversationID))
		return err
	}

	v.turns = append(v.turns, Turn{Role: models.RoleAssistant, Content: reply})
	return nil
}

// transcript converts the confirmed turns into wire messages. Unconfirmed
// turns are excluded so a failed send is not silently replayed.
func (v *ConversationView) transcript() []models.Message {
	messages := make([]models.Message, 0, len(v.turns))
	for _, t := range v.turns {
		if t.Unconfirmed {
			continue
		}
		messages = append(messages, models.Message{Role: t.Role, Content: t.Content})
	}
	return messages
}
