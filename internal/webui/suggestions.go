package webui

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

// DefaultPollInterval is the production polling cadence.
const DefaultPollInterval = 5 * time.Second

// Fetcher is the slice of the API client the suggestions panel uses.
type Fetcher interface {
	Suggestions(ctx context.Context, conversationID string) ([]models.Suggestion, error)
}

// Groups is the fully-partitioned suggestion state. Every fetch replaces the
// whole value; buckets are never merged.
type Groups struct {
	Flights     []models.Suggestion
	Hotels      []models.Suggestion
	Leisure     []models.Suggestion
	Shops       []models.Suggestion
	Restaurants []models.Suggestion
	Attractions []models.Suggestion
}

// Empty reports whether every bucket is empty.
func (g Groups) Empty() bool {
	return len(g.Flights) == 0 && len(g.Hotels) == 0 && len(g.Leisure) == 0 &&
		len(g.Shops) == 0 && len(g.Restaurants) == 0 && len(g.Attractions) == 0
}

// Section is one renderable bucket with its display title.
type Section struct {
	Title string
	Items []models.Suggestion
}

// Sections returns the non-empty buckets in display order: flights, hotels,
// leisure, shops, then the rest.
func (g Groups) Sections() []Section {
	all := []Section{
		{"Flights", g.Flights},
		{"Hotels", g.Hotels},
		{"Leisure", g.Leisure},
		{"Shops", g.Shops},
		{"Restaurants", g.Restaurants},
		{"Attractions", g.Attractions},
	}
	sections := make([]Section, 0, len(all))
	for _, s := range all {
		if len(s.Items) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

// Group partitions suggestions into buckets by category. An unrecognized
// category lands in attractions, never in an error.
func Group(suggestions []models.Suggestion) Groups {
	var g Groups
	for _, s := range suggestions {
		switch s.Category {
		case models.CategoryFlight:
			g.Flights = append(g.Flights, s)
		case models.CategoryHotel:
			g.Hotels = append(g.Hotels, s)
		case models.CategoryLeisure:
			g.Leisure = append(g.Leisure, s)
		case models.CategoryShop:
			g.Shops = append(g.Shops, s)
		case models.CategoryRestaurant:
			g.Restaurants = append(g.Restaurants, s)
		default:
			g.Attractions = append(g.Attractions, s)
		}
	}
	return g
}

type pollKey struct {
	ConversationID string
	RefreshKey     int
}

// Poller keeps an eventually-consistent view of one conversation's
// suggestions: an immediate fetch on every key change, then one fetch per
// interval. Responses are tagged with the key they were issued for and
// discarded if the key has moved on.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger

	mu              sync.Mutex
	key             pollKey
	groups          Groups
	loading         bool
	destinationHint string
	cancel          context.CancelFunc
}

func NewPoller(fetcher Fetcher, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{fetcher: fetcher, interval: interval, logger: logger}
}

// SetKey points the poller at a (conversationID, refreshKey) pair. Any change
// cancels the pending cycle and restarts with an immediate fetch. An empty
// conversation id clears the state and stops polling. A conversation change
// starts a new polling lifetime, resetting the destination hint.
func (p *Poller) SetKey(conversationID string, refreshKey int) {
	next := pollKey{ConversationID: conversationID, RefreshKey: refreshKey}

	p.mu.Lock()
	if next == p.key && p.cancel != nil {
		p.mu.Unlock()
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	conversationChanged := next.ConversationID != p.key.ConversationID
	p.key = next
	if conversationChanged {
		p.groups = Groups{}
		p.destinationHint = ""
	}
	if conversationID == "" {
		p.loading = false
		p.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.loading = true
	p.mu.Unlock()

	go p.run(ctx, next)
}

// Stop tears the polling loop down. The held state stays readable.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.loading = false
}

// Snapshot returns the current grouped state, whether a fetch cycle is
// active, and the captured destination hint.
func (p *Poller) Snapshot() (groups Groups, loading bool, destinationHint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.groups, p.loading, p.destinationHint
}

func (p *Poller) run(ctx context.Context, key pollKey) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.fetch(ctx, key)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) fetch(ctx context.Context, key pollKey) {
	suggestions, err := p.fetcher.Suggestions(ctx, key.ConversationID)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Stale guard: the key moved on while this fetch was in flight.
	if p.key != key {
		return
	}
	p.loading = false

	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Suggestions fetch failed",
				zap.Error(err), zap.String("conversationID", key.ConversationID))
		}
		return
	}

	p.groups = Group(suggestions)
	if p.destinationHint == "" {
		if hotels := p.groups.Hotels; len(hotels) > 0 && hotels[0].Location != nil {
			p.destinationHint = hotels[0].Location.Address
		}
	}
}
