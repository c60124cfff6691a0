package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/models"
)

func TestLoginKeepsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "grace@example.com", body["email"])

		http.SetCookie(w, &http.Cookie{Name: "voyagent_session", Value: "abc", Path: "/"})
		json.NewEncoder(w).Encode(map[string]any{
			"user":  models.User{ID: "u1", Email: "grace@example.com"},
			"token": "jwt-token",
		})
	})
	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("voyagent_session")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user": models.User{ID: "u1", Email: "grace@example.com"}})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	user, err := c.Login(context.Background(), "grace@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	current, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", current.Email)
}

func TestAPIErrorCarriesBodyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "User already exists"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Signup(context.Background(), SignupParams{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User already exists", apiErr.Message)
}

func TestAPIErrorGenericFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream dead</html>"))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.CurrentUser(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "request failed", apiErr.Message)
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/travel-chat", r.URL.Path)

		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c1", req.ConversationID)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, models.RoleUser, req.Messages[1].Role)

		json.NewEncoder(w).Encode(models.ChatResponse{Response: "Rome is lovely in spring."})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	reply, err := c.SendMessage(context.Background(), "c1", []models.Message{
		{Role: models.RoleAssistant, Content: "Where to?"},
		{Role: models.RoleUser, Content: "Rome"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rome is lovely in spring.", reply)
}

func TestSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/suggestions/c1", r.URL.Path)
		json.NewEncoder(w).Encode(models.SuggestionList{Suggestions: []models.Suggestion{
			{ID: uuid.New(), Category: models.CategoryHotel, Title: "Hotel Roma"},
		}})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	suggestions, err := c.Suggestions(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Hotel Roma", suggestions[0].Title)
}

func TestBearerTokenSentWhenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"user": models.User{ID: "u1"}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("tok"))
	require.NoError(t, err)

	_, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
}
