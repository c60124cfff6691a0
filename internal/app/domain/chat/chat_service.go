package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
	"github.com/voyagent/voyagent/internal/platform/booking"
)

// Generator produces an assistant reply from a system prompt and transcript.
// Satisfied by llm.GeminiClient.
type Generator interface {
	GenerateReply(ctx context.Context, systemPrompt string, history []models.Message) (string, error)
}

// HotelSearcher is the slice of the booking client the chat flow uses.
type HotelSearcher interface {
	Enabled() bool
	SearchHotels(ctx context.Context, params booking.HotelSearchParams) (*booking.HotelResult, error)
}

// SuggestionRecorder turns a fully specified trip into stored suggestions.
// Satisfied by the suggestions service; nil disables the pipeline.
type SuggestionRecorder interface {
	GenerateForTrip(ctx context.Context, conversationID string, prefs models.TripPreferences) error
}

type ChatService struct {
	repo     ChatRepo
	llm      Generator
	hotels   HotelSearcher
	recorder SuggestionRecorder
	logger   *zap.Logger
}

func NewChatService(repo ChatRepo, llm Generator, hotels HotelSearcher, recorder SuggestionRecorder, logger *zap.Logger) *ChatService {
	return &ChatService{repo: repo, llm: llm, hotels: hotels, recorder: recorder, logger: logger}
}

// SetRecorder wires the suggestion pipeline after construction. The
// suggestions service needs the chat service for conversation lookups, so the
// two are linked once both exist, before the router starts serving.
func (s *ChatService) SetRecorder(recorder SuggestionRecorder) {
	s.recorder = recorder
}

func (s *ChatService) CreateConversation(ctx context.Context, userID string) (*models.Conversation, error) {
	return s.repo.CreateConversation(ctx, userID)
}

// GetConversation fetches a conversation, hiding other users' conversations
// behind ErrNotFound.
func (s *ChatService) GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID.String() != userID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
	}
	return conv, nil
}

// GetMessages returns the transcript of one of the user's conversations.
func (s *ChatService) GetMessages(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.GetMessages(ctx, conversationID)
}

// SendMessage runs one turn of the travel chat: build the staged prompt,
// generate a reply, fold any extracted trip details back into the
// conversation and persist the exchange.
func (s *ChatService) SendMessage(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatResponse, error) {
	if req.ConversationID == "" || len(req.Messages) == 0 {
		return nil, fmt.Errorf("conversationId and messages are required: %w", models.ErrBadRequest)
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != models.RoleUser || strings.TrimSpace(last.Content) == "" {
		return nil, fmt.Errorf("last message must be a non-empty user turn: %w", models.ErrBadRequest)
	}

	conv, err := s.GetConversation(ctx, userID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	prefs := decodePreferences(conv)

	var hotel *booking.HotelResult
	if prefs.Complete() && s.hotels != nil && s.hotels.Enabled() {
		hotel = s.searchHotel(ctx, prefs)
	}

	reply, err := s.llm.GenerateReply(ctx, buildSystemPrompt(prefs, hotel), req.Messages)
	if err != nil {
		return nil, err
	}

	wasComplete := prefs.Complete()
	clean, extracted, found := parseExtraction(reply)
	if found && prefs.Merge(extracted) {
		if err := s.repo.UpdatePreferences(ctx, conv, prefs); err != nil {
			s.logger.Error("Failed to update trip preferences",
				zap.Error(err), zap.String("conversationID", conv.ID.String()))
		}
	}

	if dest := prefs.Destination; dest != nil && *dest != "" {
		clean = enhanceWithMapsLinks(clean, *dest)
	}

	if err := s.repo.SaveExchange(ctx, conv.ID, last.Content, clean); err != nil {
		return nil, err
	}

	if !wasComplete && prefs.Complete() && s.recorder != nil {
		go s.recordSuggestions(conv.ID.String(), prefs)
	}

	return &models.ChatResponse{Response: clean}, nil
}

func (s *ChatService) recordSuggestions(conversationID string, prefs models.TripPreferences) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.recorder.GenerateForTrip(ctx, conversationID, prefs); err != nil {
		s.logger.Error("Suggestion generation failed",
			zap.Error(err), zap.String("conversationID", conversationID))
	}
}

func (s *ChatService) searchHotel(ctx context.Context, prefs models.TripPreferences) *booking.HotelResult {
	adults := 1
	if prefs.Adults != nil && *prefs.Adults > 0 {
		adults = *prefs.Adults
	}
	hotel, err := s.hotels.SearchHotels(ctx, booking.HotelSearchParams{
		City:      *prefs.Destination,
		Arrival:   *prefs.ArrivalDate,
		Departure: *prefs.DepartureDate,
		PriceMax:  prefs.BudgetMax(),
		Adults:    adults,
	})
	if err != nil {
		s.logger.Warn("Hotel search failed, replying without a pinned hotel", zap.Error(err))
		return nil
	}
	return hotel
}

func decodePreferences(conv *models.Conversation) models.TripPreferences {
	var prefs models.TripPreferences
	if len(conv.Preferences) > 0 {
		_ = json.Unmarshal(conv.Preferences, &prefs)
	}
	if prefs.Destination == nil && conv.Destination != nil {
		prefs.Destination = conv.Destination
	}
	if prefs.Budget == nil && conv.Budget != nil {
		prefs.Budget = conv.Budget
	}
	return prefs
}
