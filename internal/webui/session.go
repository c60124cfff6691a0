package webui

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionManager hands out one Dashboard per signed-in user. Dashboards own
// goroutines (the suggestions poller), so eviction must close them.
type SessionManager struct {
	mu         sync.Mutex
	dashboards map[string]*Dashboard

	newBackend   func(userID string) Backend
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewSessionManager(newBackend func(userID string) Backend, pollInterval time.Duration, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		dashboards:   make(map[string]*Dashboard),
		newBackend:   newBackend,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Get returns the user's dashboard, creating it on first use.
func (m *SessionManager) Get(userID string) *Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.dashboards[userID]; ok {
		return d
	}
	d := NewDashboard(m.newBackend(userID), m.pollInterval, m.logger)
	m.dashboards[userID] = d
	return d
}

// Remove evicts and closes the user's dashboard.
func (m *SessionManager) Remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.dashboards[userID]; ok {
		d.Close()
		delete(m.dashboards, userID)
	}
}

// Shutdown closes every dashboard, stopping their pollers.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, d := range m.dashboards {
		d.Close()
		delete(m.dashboards, id)
	}
}
