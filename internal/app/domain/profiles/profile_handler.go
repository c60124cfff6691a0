package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/app/middleware"
	"github.com/voyagent/voyagent/internal/models"
)

type ProfileHandlers struct {
	service ProfileService
	logger  *zap.Logger
}

func NewProfileHandlers(service ProfileService, logger *zap.Logger) *ProfileHandlers {
	return &ProfileHandlers{service: service, logger: logger}
}

// GetProfileHandler handles GET /api/profile.
func (h *ProfileHandlers) GetProfileHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Error(err), zap.String("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfileHandler handles PUT /api/profile.
func (h *ProfileHandlers) UpdateProfileHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var params models.UpdateProfileParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), user.ID, params); err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to update profile", zap.Error(err), zap.String("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
