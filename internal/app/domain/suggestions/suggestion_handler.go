package suggestions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/app/middleware"
	"github.com/voyagent/voyagent/internal/models"
)

type SuggestionHandlers struct {
	suggestionService *SuggestionService
	logger            *zap.Logger
}

func NewSuggestionHandlers(suggestionService *SuggestionService, logger *zap.Logger) *SuggestionHandlers {
	return &SuggestionHandlers{
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// GetSuggestionsHandler handles GET /api/suggestions/:conversationId.
func (h *SuggestionHandlers) GetSuggestionsHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversationId")
	suggestions, err := h.suggestionService.ListSuggestions(c.Request.Context(), user.ID, conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("Failed to list suggestions",
			zap.Error(err), zap.String("conversationID", conversationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load suggestions"})
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	c.JSON(http.StatusOK, models.SuggestionList{Suggestions: suggestions})
}
