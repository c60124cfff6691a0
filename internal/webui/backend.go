package webui

import (
	"context"

	"github.com/voyagent/voyagent/internal/models"
)

// Service interfaces the in-process backend delegates to. Satisfied by the
// auth, chat and suggestions services.
type (
	UserResolver interface {
		GetUser(ctx context.Context, userID string) (*models.User, error)
	}
	ChatService interface {
		CreateConversation(ctx context.Context, userID string) (*models.Conversation, error)
		SendMessage(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error)
	}
	SuggestionService interface {
		ListSuggestions(ctx context.Context, userID, conversationID string) ([]models.Suggestion, error)
	}
)

// ServiceBackend implements Backend directly over the domain services, bound
// to one authenticated user. The dashboard pages run in the same process as
// the API, so no HTTP loopback is needed.
type ServiceBackend struct {
	userID      string
	users       UserResolver
	chat        ChatService
	suggestions SuggestionService
}

func NewServiceBackend(userID string, users UserResolver, chat ChatService, suggestions SuggestionService) *ServiceBackend {
	return &ServiceBackend{userID: userID, users: users, chat: chat, suggestions: suggestions}
}

func (b *ServiceBackend) CurrentUser(ctx context.Context) (*models.User, error) {
	return b.users.GetUser(ctx, b.userID)
}

func (b *ServiceBackend) CreateConversation(ctx context.Context) (string, error) {
	conv, err := b.chat.CreateConversation(ctx, b.userID)
	if err != nil {
		return "", err
	}
	return conv.ID.String(), nil
}

func (b *ServiceBackend) SendMessageWithLocation(ctx context.Context, conversationID string, messages []models.Message, location *models.GeoPoint) (string, error) {
	resp, err := b.chat.SendMessage(ctx, b.userID, models.ChatRequest{
		ConversationID: conversationID,
		Messages:       messages,
		Location:       location,
	})
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (b *ServiceBackend) Suggestions(ctx context.Context, conversationID string) ([]models.Suggestion, error) {
	return b.suggestions.ListSuggestions(ctx, b.userID, conversationID)
}

// Logout is a no-op at the service layer; the page handler clears the
// session cookie itself.
func (b *ServiceBackend) Logout(ctx context.Context) error {
	return nil
}
