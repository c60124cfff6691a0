package webui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

// Backend is everything the dashboard needs from the API client.
type Backend interface {
	ChatBackend
	Fetcher
	CurrentUser(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

// Dashboard is the composition root for one browser session: identity,
// the conversation view, the suggestions poller and the refresh counter.
// The mutex serializes event handling; the views themselves do no locking.
type Dashboard struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger

	user       *models.User
	loading    bool
	location   *models.GeoPoint
	refreshKey int

	Conversation *ConversationView
	Suggestions  *Poller
}

func NewDashboard(backend Backend, pollInterval time.Duration, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		backend:      backend,
		logger:       logger,
		loading:      true,
		Conversation: NewConversationView(backend, logger),
		Suggestions:  NewPoller(backend, pollInterval, logger),
	}
}

func (d *Dashboard) User() *models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.user
}

func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *Dashboard) Location() *models.GeoPoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location
}

func (d *Dashboard) RefreshKey() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshKey
}

// Init verifies identity and, on success, starts the conversation and the
// suggestions poller. An identity failure leaves nothing created; the caller
// redirects to the auth flow.
func (d *Dashboard) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.user != nil {
		return nil
	}

	user, err := d.backend.CurrentUser(ctx)
	if err != nil {
		d.loading = false
		return fmt.Errorf("identity check failed: %w", err)
	}
	d.user = user

	if err := d.Conversation.Begin(ctx, user); err != nil {
		d.loading = false
		return err
	}
	d.Suggestions.SetKey(d.Conversation.ConversationID(), d.refreshKey)
	d.loading = false
	return nil
}

// Send submits a typed user turn; a completed exchange bumps the refresh
// counter, which is the only out-of-band suggestions refresh mechanism.
func (d *Dashboard) Send(ctx context.Context, input string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.Conversation.Send(ctx, input); err != nil {
		return err
	}
	d.bumpRefresh()
	return nil
}

// PickLocation relays a location chosen on the map into a synthetic chat
// message through the same send path as typed input.
func (d *Dashboard) PickLocation(ctx context.Context, loc models.GeoPoint) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location = &loc
	if err := d.Conversation.SendLocation(ctx, loc); err != nil {
		return err
	}
	d.bumpRefresh()
	return nil
}

// Logout ends the backend session and stops the poller. The caller redirects.
func (d *Dashboard) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Suggestions.Stop()
	if err := d.backend.Logout(ctx); err != nil {
		d.logger.Warn("Logout failed", zap.Error(err))
		return err
	}
	d.user = nil
	return nil
}

// Close tears down background activity when the session goes away.
func (d *Dashboard) Close() {
	d.Suggestions.Stop()
}

// ConversationSnapshot copies the transcript state for rendering.
func (d *Dashboard) ConversationSnapshot() (turns []Turn, sending bool, notice string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	turns = make([]Turn, len(d.Conversation.Turns()))
	copy(turns, d.Conversation.Turns())
	return turns, d.Conversation.Sending(), d.Conversation.Notice()
}

func (d *Dashboard) bumpRefresh() {
	d.refreshKey++
	d.Suggestions.SetKey(d.Conversation.ConversationID(), d.refreshKey)
}
