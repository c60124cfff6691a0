// Package booking is a thin client for the Booking.com affiliate API on
// RapidAPI. The chat flow degrades gracefully when credentials are absent:
// searches are skipped, never errored.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/pkg/config"
)

const requestTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	host       string
	key        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.BookingConfig, logger *zap.Logger) *Client {
	c := &Client{
		host:       cfg.APIHost,
		key:        cfg.APIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
	if c.host != "" {
		c.baseURL = "https://" + c.host
	}
	return c
}

// Enabled reports whether API credentials are configured.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.key != ""
}

// get issues an authenticated GET and decodes the JSON envelope into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.Enabled() {
		return fmt.Errorf("booking API credentials not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build booking request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("booking request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read booking response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Booking API returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
		return fmt.Errorf("booking API status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode booking response: %w", err)
	}
	return nil
}

// SetBaseURL points the client at a different endpoint, for tests against
// httptest servers.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
	if c.key == "" {
		c.key = "test"
	}
}
