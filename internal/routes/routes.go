package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/app/domain/auth"
	"github.com/voyagent/voyagent/internal/app/domain/chat"
	"github.com/voyagent/voyagent/internal/app/domain/profiles"
	"github.com/voyagent/voyagent/internal/app/domain/suggestions"
	"github.com/voyagent/voyagent/internal/app/middleware"
	"github.com/voyagent/voyagent/internal/models"
	"github.com/voyagent/voyagent/internal/pkg/config"
	"github.com/voyagent/voyagent/internal/platform/booking"
	"github.com/voyagent/voyagent/internal/platform/llm"
	"github.com/voyagent/voyagent/internal/webui"
)

type AppHandlers struct {
	Auth        *auth.AuthHandlers
	Profiles    *profiles.ProfileHandlers
	Chat        *chat.ChatHandlers
	Suggestions *suggestions.SuggestionHandlers
	WebUI       *webui.Handlers

	authService auth.AuthService
}

func Setup(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) error {
	handlers, err := setupDependencies(cfg, dbPool, logger)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	setupRouter(r, handlers)
	return nil
}

func setupDependencies(cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) (*AppHandlers, error) {
	authRepo := auth.NewPostgresAuthRepo(dbPool, logger)
	authService := auth.NewAuthService(authRepo, cfg, logger)

	profileRepo := profiles.NewPostgresProfileRepo(dbPool, logger)
	profileService := profiles.NewProfileService(profileRepo, logger)

	bookingClient := booking.NewClient(cfg.Booking, logger)
	if !bookingClient.Enabled() {
		logger.Warn("Booking API credentials not set, hotel and flight search disabled")
	}

	var generator chat.Generator
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiClient(context.Background(), cfg.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat replies disabled")
		generator = unavailableGenerator{}
	}

	chatRepo := chat.NewPostgresChatRepo(dbPool, logger)
	chatService := chat.NewChatService(chatRepo, generator, bookingClient, nil, logger)

	suggestionRepo := suggestions.NewPostgresSuggestionRepo(dbPool, logger)
	suggestionService := suggestions.NewSuggestionService(suggestionRepo, chatService, bookingClient, logger)
	chatService.SetRecorder(suggestionService)

	sessionManager := webui.NewSessionManager(func(userID string) webui.Backend {
		return webui.NewServiceBackend(userID, authService, chatService, suggestionService)
	}, webui.DefaultPollInterval, logger)

	return &AppHandlers{
		Auth:        auth.NewAuthHandlers(authService, logger),
		Profiles:    profiles.NewProfileHandlers(profileService, logger),
		Chat:        chat.NewChatHandlers(chatService, logger),
		Suggestions: suggestions.NewSuggestionHandlers(suggestionService, logger),
		WebUI:       webui.NewHandlers(sessionManager, logger),

		authService: authService,
	}, nil
}

func setupRouter(r *gin.Engine, h *AppHandlers) {
	debugGroup := r.Group("/debug/pprof")
	{
		debugGroup.GET("/", gin.WrapH(http.HandlerFunc(pprof.Index)))
		debugGroup.GET("/cmdline", gin.WrapH(http.HandlerFunc(pprof.Cmdline)))
		debugGroup.GET("/profile", gin.WrapH(http.HandlerFunc(pprof.Profile)))
		debugGroup.GET("/symbol", gin.WrapH(http.HandlerFunc(pprof.Symbol)))
		debugGroup.GET("/trace", gin.WrapH(http.HandlerFunc(pprof.Trace)))
		debugGroup.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		debugGroup.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		debugGroup.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/auth/signin", h.WebUI.SigninPageHandler)
	r.GET("/auth/signup", h.WebUI.SignupPageHandler)

	api := r.Group("/api")
	{
		api.POST("/auth/signup", h.Auth.SignupHandler)
		api.POST("/auth/login", h.Auth.LoginHandler)
		api.POST("/auth/logout", h.Auth.LogoutHandler)

		protected := api.Group("/")
		protected.Use(middleware.APIAuthMiddleware(h.authService))
		{
			protected.GET("/auth/user", h.Auth.CurrentUserHandler)
			protected.GET("/profile", h.Profiles.GetProfileHandler)
			protected.PUT("/profile", h.Profiles.UpdateProfileHandler)
			protected.POST("/conversations", h.Chat.CreateConversationHandler)
			protected.GET("/conversations/:conversationId/messages", h.Chat.GetMessagesHandler)
			protected.POST("/travel-chat", h.Chat.TravelChatHandler)
			protected.GET("/suggestions/:conversationId", h.Suggestions.GetSuggestionsHandler)
		}
	}

	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.PageAuthMiddleware())
	{
		dashboard.GET("", h.WebUI.DashboardPageHandler)
		dashboard.POST("/send", h.WebUI.SendHandler)
		dashboard.POST("/location", h.WebUI.LocationHandler)
		dashboard.GET("/suggestions", h.WebUI.SuggestionsFragmentHandler)
		dashboard.POST("/logout", h.WebUI.LogoutHandler)
	}
}

// unavailableGenerator stands in when no LLM is configured so the rest of the
// app still serves.
type unavailableGenerator struct{}

func (unavailableGenerator) GenerateReply(ctx context.Context, systemPrompt string, history []models.Message) (string, error) {
	return "", fmt.Errorf("no language model is configured")
}
