// Package client is a typed Go client for the voyagent HTTP API. It keeps a
// cookie jar so the session established by Login rides along on every
// subsequent call, mirroring a browser.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/pkg/errors"

	"github.com/voyagent/voyagent/internal/models"
)

// APIError is the single error kind returned for non-2xx responses. Message
// is the response body's "error" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The replacement gets a
// cookie jar installed if it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a bearer token instead of relying on the session cookie.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// do issues one JSON request and decodes the response into out (when out is
// non-nil). Non-2xx statuses return *APIError; no retries, no backoff.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrapf(err, "failed to decode %s %s response", method, path)
		}
	}
	return nil
}

// errorMessage extracts the body's "error" field, falling back to a generic
// message when the body is absent or unparsable.
func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return "request failed"
}

// SignupParams is the POST /api/auth/signup body.
type SignupParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

// Signup registers a new account. It does not log the account in.
func (c *Client) Signup(ctx context.Context, params SignupParams) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signup", params, nil)
}

type loginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login establishes a session. The session cookie lands in the jar; the
// returned user identifies the account.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", struct{}{}, nil)
	c.token = ""
	return err
}

// CurrentUser returns the identity behind the current session.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Profile fetches the caller's profile record.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	profile := &models.Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of params.
func (c *Client) UpdateProfile(ctx context.Context, params models.UpdateProfileParams) error {
	return c.do(ctx, http.MethodPut, "/api/profile", params, nil)
}

// CreateConversation starts a new chat session and returns its id.
func (c *Client) CreateConversation(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/conversations", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SendMessage submits the transcript-so-far and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, conversationID string, messages []models.Message) (string, error) {
	return c.SendMessageWithLocation(ctx, conversationID, messages, nil)
}

// SendMessageWithLocation is SendMessage with the optional coordinate payload
// attached when the turn came from a map pick.
func (c *Client) SendMessageWithLocation(ctx context.Context, conversationID string, messages []models.Message, location *models.GeoPoint) (string, error) {
	var resp models.ChatResponse
	req := models.ChatRequest{ConversationID: conversationID, Messages: messages, Location: location}
	if err := c.do(ctx, http.MethodPost, "/api/travel-chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// Suggestions fetches the stored suggestions for a conversation.
func (c *Client) Suggestions(ctx context.Context, conversationID string) ([]models.Suggestion, error) {
	var resp models.SuggestionList
	if err := c.do(ctx, http.MethodGet, "/api/suggestions/"+conversationID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}
