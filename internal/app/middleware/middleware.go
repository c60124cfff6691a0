package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/voyagent/voyagent/internal/app/domain/auth"
	"github.com/voyagent/voyagent/internal/models"
)

// Session keys.
const (
	SessionUserIDKey = "user_id"
	SessionEmailKey  = "user_email"
)

// Context keys.
const UserContextKey = "user"

// CORSMiddleware handles CORS headers. The UI is served from the same origin;
// credentials stay enabled for API clients running on a dev port.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, HX-Request, HX-Target, HX-Current-URL")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers.
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' https://unpkg.com https://api.mapbox.com; " +
			"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://api.mapbox.com; " +
			"font-src 'self' https://fonts.gstatic.com; " +
			"img-src 'self' data: https:; " +
			"connect-src 'self' https://api.mapbox.com https://*.tiles.mapbox.com https://events.mapbox.com"
		c.Writer.Header().Set("Content-Security-Policy", csp)

		c.Next()
	}
}

// APIAuthMiddleware authenticates API requests: a logged-in cookie session or
// a bearer access token. Unauthenticated requests get the JSON error body the
// client expects, not a redirect.
func APIAuthMiddleware(tokens auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := userFromSession(c); ok {
			c.Set(UserContextKey, user)
			c.Next()
			return
		}

		if user, ok := userFromBearer(c, tokens); ok {
			c.Set(UserContextKey, user)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
}

// PageAuthMiddleware protects server-rendered pages: unauthenticated browsers
// are sent to the sign-in page, HTMX requests get an HX-Redirect instead.
func PageAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromSession(c)
		if !ok {
			handleAuthRedirect(c, "/auth/signin")
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

func userFromSession(c *gin.Context) (*models.User, bool) {
	session := sessions.Default(c)
	id, _ := session.Get(SessionUserIDKey).(string)
	if id == "" {
		return nil, false
	}
	email, _ := session.Get(SessionEmailKey).(string)
	return &models.User{ID: id, Email: email}, true
}

func userFromBearer(c *gin.Context, tokens auth.TokenValidator) (*models.User, bool) {
	if tokens == nil {
		return nil, false
	}
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return &models.User{ID: claims.UserID, Email: claims.Email}, true
}

// handleAuthRedirect handles redirects for both regular and HTMX requests.
func handleAuthRedirect(c *gin.Context, redirectURL string) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", redirectURL)
		c.AbortWithStatus(http.StatusUnauthorized)
	} else {
		c.Redirect(http.StatusFound, redirectURL)
		c.Abort()
	}
}

// GetUserFromContext extracts the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) *models.User {
	user, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	u, ok := user.(*models.User)
	if !ok {
		return nil
	}
	return u
}
