package suggestions

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voyagent/voyagent/internal/models"
	"github.com/voyagent/voyagent/internal/platform/booking"
)

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

// ConversationGetter resolves a conversation for an owner check. Satisfied by
// the chat service.
type ConversationGetter interface {
	GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
}

// TravelSearcher is the slice of the booking client the pipeline uses.
type TravelSearcher interface {
	Enabled() bool
	SearchHotels(ctx context.Context, params booking.HotelSearchParams) (*booking.HotelResult, error)
	SearchFlights(ctx context.Context, params booking.FlightSearchParams) (*booking.FlightResult, error)
}

type SuggestionService struct {
	repo          SuggestionRepo
	conversations ConversationGetter
	searcher      TravelSearcher
	cache         *cache.Cache
	logger        *zap.Logger
}

func NewSuggestionService(repo SuggestionRepo, conversations ConversationGetter, searcher TravelSearcher, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{
		repo:          repo,
		conversations: conversations,
		searcher:      searcher,
		cache:         cache.New(cacheTTL, cacheCleanup),
		logger:        logger,
	}
}

// ListSuggestions returns the stored suggestions for one of the user's
// conversations. Results are cached briefly since the dashboard polls this
// endpoint on a fixed cadence.
func (s *SuggestionService) ListSuggestions(ctx context.Context, userID, conversationID string) ([]models.Suggestion, error) {
	if _, err := s.conversations.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(conversationID); ok {
		return cached.([]models.Suggestion), nil
	}

	suggestions, err := s.repo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(conversationID, suggestions, cache.DefaultExpiration)
	return suggestions, nil
}

// GenerateForTrip runs hotel and flight searches for a fully specified trip
// and replaces the conversation's stored suggestions with the results. Called
// by the chat flow once destination, dates and budget are all known.
func (s *SuggestionService) GenerateForTrip(ctx context.Context, conversationID string, prefs models.TripPreferences) error {
	if s.searcher == nil || !s.searcher.Enabled() {
		s.logger.Info("Booking search disabled, skipping suggestion generation",
			zap.String("conversationID", conversationID))
		return nil
	}
	if !prefs.Complete() {
		return fmt.Errorf("trip preferences incomplete for conversation %s: %w", conversationID, models.ErrBadRequest)
	}

	adults := 1
	if prefs.Adults != nil && *prefs.Adults > 0 {
		adults = *prefs.Adults
	}

	var (
		hotel  *booking.HotelResult
		flight *booking.FlightResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hotel, err = s.searcher.SearchHotels(gctx, booking.HotelSearchParams{
			City:      *prefs.Destination,
			Arrival:   *prefs.ArrivalDate,
			Departure: *prefs.DepartureDate,
			PriceMax:  prefs.BudgetMax(),
			Adults:    adults,
		})
		if err != nil {
			s.logger.Warn("Hotel suggestion search failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if prefs.Origin == nil || *prefs.Origin == "" {
			return nil
		}
		var err error
		flight, err = s.searcher.SearchFlights(gctx, booking.FlightSearchParams{
			OriginCity:      *prefs.Origin,
			DestinationCity: *prefs.Destination,
			DepartureDate:   *prefs.ArrivalDate,
			Adults:          adults,
		})
		if err != nil {
			s.logger.Warn("Flight suggestion search failed", zap.Error(err))
		}
		return nil
	})
	// Search failures are logged, not propagated, so Wait never errors here.
	_ = g.Wait()

	var suggestions []models.Suggestion
	if flight != nil {
		suggestions = append(suggestions, flightSuggestion(flight))
	}
	if hotel != nil {
		suggestions = append(suggestions, hotelSuggestion(hotel))
	}
	if len(suggestions) == 0 {
		s.logger.Warn("No suggestions produced for trip", zap.String("conversationID", conversationID))
		return nil
	}

	if err := s.repo.ReplaceForConversation(ctx, conversationID, suggestions); err != nil {
		return err
	}
	s.cache.Delete(conversationID)

	s.logger.Info("Stored trip suggestions",
		zap.String("conversationID", conversationID),
		zap.Int("count", len(suggestions)))
	return nil
}

func hotelSuggestion(hotel *booking.HotelResult) models.Suggestion {
	s := models.Suggestion{
		Category:    models.CategoryHotel,
		Title:       hotel.Name,
		Description: hotel.Description,
		ImageURL:    hotel.ImageURL(),
		BookingURL:  hotel.BookingURL,
	}
	if hotel.Price > 0 {
		price := hotel.Price
		s.Price = &price
	}
	if hotel.Rating > 0 {
		// Booking.com scores are out of 10, the dashboard renders out of 5.
		rating := hotel.Rating / 2
		s.Rating = &rating
	}
	if hotel.Destination != "" {
		s.Location = &models.SuggestionLocation{Address: hotel.Destination}
	}
	return s
}

func flightSuggestion(flight *booking.FlightResult) models.Suggestion {
	s := models.Suggestion{
		Category:    models.CategoryFlight,
		Title:       flight.Title,
		Description: flight.Description,
		BookingURL:  flight.BookingURL,
	}
	if flight.Price > 0 {
		price := flight.Price
		s.Price = &price
	}
	if flight.OriginCode != "" || flight.DestinationCode != "" {
		s.Location = &models.SuggestionLocation{
			Origin:      flight.OriginCode,
			Destination: flight.DestinationCode,
		}
	}
	return s
}
