package webui

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/app/middleware"
	"github.com/voyagent/voyagent/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded page and fragment templates for the router.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// StaticFS exposes the embedded stylesheet tree rooted at "static".
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}

type Handlers struct {
	sessions *SessionManager
	logger   *zap.Logger
}

func NewHandlers(sessions *SessionManager, logger *zap.Logger) *Handlers {
	return &Handlers{sessions: sessions, logger: logger}
}

type turnView struct {
	Role        string
	Unconfirmed bool
	Segments    []Segment
}

type conversationView struct {
	Turns   []turnView
	Sending bool
	Notice  string
}

type suggestionsView struct {
	Sections        []Section
	ShowEmptyNotice bool
	DestinationHint string
}

// SigninPageHandler handles GET /auth/signin.
func (h *Handlers) SigninPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "signin.html", gin.H{})
}

// SignupPageHandler handles GET /auth/signup.
func (h *Handlers) SignupPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{})
}

// DashboardPageHandler handles GET /dashboard. Identity failure redirects to
// the signin page without creating anything.
func (h *Handlers) DashboardPageHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/auth/signin")
		return
	}

	dashboard := h.sessions.Get(user.ID)
	if err := dashboard.Init(c.Request.Context()); err != nil {
		h.logger.Warn("Dashboard init failed", zap.Error(err), zap.String("userID", user.ID))
		h.sessions.Remove(user.ID)
		c.Redirect(http.StatusFound, "/auth/signin")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User":         dashboard.User(),
		"Conversation": h.conversationView(dashboard),
		"Suggestions":  h.suggestionsView(dashboard),
	})
}

// SendHandler handles POST /dashboard/send and re-renders the conversation
// fragment. Blank input renders the unchanged transcript.
func (h *Handlers) SendHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/auth/signin")
		return
	}

	dashboard := h.sessions.Get(user.ID)
	if err := dashboard.Send(c.Request.Context(), c.PostForm("message")); err != nil {
		h.logger.Debug("Send rejected", zap.Error(err), zap.String("userID", user.ID))
	}

	c.HTML(http.StatusOK, "conversation.html", h.conversationView(dashboard))
}

// LocationHandler handles POST /dashboard/location: a picked map location
// becomes a synthetic chat turn.
func (h *Handlers) LocationHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/auth/signin")
		return
	}

	lat, _ := strconv.ParseFloat(c.PostForm("lat"), 64)
	lng, _ := strconv.ParseFloat(c.PostForm("lng"), 64)
	loc := models.GeoPoint{Name: c.PostForm("name"), Latitude: lat, Longitude: lng}

	dashboard := h.sessions.Get(user.ID)
	if loc.Name == "" {
		c.HTML(http.StatusOK, "conversation.html", h.conversationView(dashboard))
		return
	}
	if err := dashboard.PickLocation(c.Request.Context(), loc); err != nil {
		h.logger.Debug("Location send rejected", zap.Error(err), zap.String("userID", user.ID))
	}

	c.HTML(http.StatusOK, "conversation.html", h.conversationView(dashboard))
}

// SuggestionsFragmentHandler handles GET /dashboard/suggestions, the fragment
// the browser refreshes to mirror the server-side poller.
func (h *Handlers) SuggestionsFragmentHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/auth/signin")
		return
	}

	c.HTML(http.StatusOK, "suggestions.html", h.suggestionsView(h.sessions.Get(user.ID)))
}

// LogoutHandler handles POST /dashboard/logout: tear the dashboard down,
// clear the session cookie and send the browser to signin.
func (h *Handlers) LogoutHandler(c *gin.Context) {
	if user := middleware.GetUserFromContext(c); user != nil {
		dashboard := h.sessions.Get(user.ID)
		if err := dashboard.Logout(c.Request.Context()); err != nil {
			h.logger.Warn("Dashboard logout failed", zap.Error(err), zap.String("userID", user.ID))
		}
		h.sessions.Remove(user.ID)
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	if err := session.Save(); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))
	}

	if c.GetHeader("HX-Request") != "" {
		c.Header("HX-Redirect", "/auth/signin")
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusFound, "/auth/signin")
}

func (h *Handlers) conversationView(d *Dashboard) conversationView {
	turns, sending, notice := d.ConversationSnapshot()
	views := make([]turnView, 0, len(turns))
	for _, t := range turns {
		views = append(views, turnView{
			Role:        t.Role,
			Unconfirmed: t.Unconfirmed,
			Segments:    SegmentContent(t.Content),
		})
	}
	return conversationView{Turns: views, Sending: sending, Notice: notice}
}

func (h *Handlers) suggestionsView(d *Dashboard) suggestionsView {
	groups, loading, hint := d.Suggestions.Snapshot()
	return suggestionsView{
		Sections:        groups.Sections(),
		ShowEmptyNotice: groups.Empty() && !loading,
		DestinationHint: hint,
	}
}
