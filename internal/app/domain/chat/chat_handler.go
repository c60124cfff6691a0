package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/app/middleware"
	"github.com/voyagent/voyagent/internal/models"
)

type ChatHandlers struct {
	chatService *ChatService
	logger      *zap.Logger
}

func NewChatHandlers(chatService *ChatService, logger *zap.Logger) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		logger:      logger,
	}
}

// CreateConversationHandler handles POST /api/conversations.
func (h *ChatHandlers) CreateConversationHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conv, err := h.chatService.CreateConversation(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to create conversation", zap.Error(err), zap.String("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": conv.ID, "status": conv.Status})
}

// TravelChatHandler handles POST /api/travel-chat.
func (h *ChatHandlers) TravelChatHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.chatService.SendMessage(c.Request.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId and messages are required"})
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		default:
			h.logger.Error("Travel chat failed",
				zap.Error(err), zap.String("conversationID", req.ConversationID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMessagesHandler handles GET /api/conversations/:conversationId/messages.
func (h *ChatHandlers) GetMessagesHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversationId")
	messages, err := h.chatService.GetMessages(c.Request.Context(), user.ID, conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("Failed to load messages", zap.Error(err), zap.String("conversationID", conversationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
