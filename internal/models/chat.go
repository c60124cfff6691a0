package models

import (
	"encoding/json"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Message roles as they travel over the wire and into storage.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation transcript. Transcripts are
// append-only and ordered by CreatedAt.
type Message struct {
	ID             uuid.UUID `json:"id,omitzero"`
	ConversationID uuid.UUID `json:"conversation_id,omitzero"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// ConversationActive is the status every conversation is created with.
const ConversationActive = "active"

// Conversation is a backend-tracked chat session. Preferences accumulate the
// structured trip details extracted from the exchange (destination, dates,
// budget, origin, travellers).
type Conversation struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"-"`
	Status      string          `json:"status"`
	Destination *string         `json:"destination,omitempty"`
	Budget      *string         `json:"budget,omitempty"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TripPreferences is the decoded form of Conversation.Preferences and the
// payload of the assistant's extraction block.
type TripPreferences struct {
	Destination   *string `json:"destination"`
	Origin        *string `json:"origin,omitempty"`
	ArrivalDate   *string `json:"arrival_date"`   // YYYY-MM-DD
	DepartureDate *string `json:"departure_date"` // YYYY-MM-DD
	Budget        *string `json:"budget"`
	Adults        *int    `json:"adults,omitempty"`
}

// Complete reports whether enough is known to run booking searches.
func (p TripPreferences) Complete() bool {
	return deref(p.Destination) != "" &&
		deref(p.ArrivalDate) != "" &&
		deref(p.DepartureDate) != "" &&
		deref(p.Budget) != ""
}

// Merge folds non-nil fields of other into p and reports whether anything
// changed.
func (p *TripPreferences) Merge(other TripPreferences) bool {
	changed := false
	if v := deref(other.Destination); v != "" {
		p.Destination = other.Destination
		changed = true
	}
	if v := deref(other.Origin); v != "" {
		p.Origin = other.Origin
		changed = true
	}
	if v := deref(other.ArrivalDate); v != "" {
		p.ArrivalDate = other.ArrivalDate
		changed = true
	}
	if v := deref(other.DepartureDate); v != "" {
		p.DepartureDate = other.DepartureDate
		changed = true
	}
	if v := deref(other.Budget); v != "" {
		p.Budget = other.Budget
		changed = true
	}
	if other.Adults != nil && *other.Adults > 0 {
		p.Adults = other.Adults
		changed = true
	}
	return changed
}

// BudgetMax pulls the first number out of the free-text budget, defaulting
// to 1000 when the user gave something like "mid-range".
func (p TripPreferences) BudgetMax() int {
	match := budgetNumberRe.FindString(deref(p.Budget))
	if match == "" {
		return 1000
	}
	n, err := strconv.Atoi(match)
	if err != nil || n <= 0 {
		return 1000
	}
	return n
}

var budgetNumberRe = regexp.MustCompile(`\d+`)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GeoPoint is a named coordinate picked on the map.
type GeoPoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// ChatRequest is the POST /api/travel-chat body: the full transcript so far
// plus the conversation it belongs to. Location is set when the user turn
// originated from a map pick.
type ChatRequest struct {
	ConversationID string    `json:"conversationId"`
	Messages       []Message `json:"messages"`
	Location       *GeoPoint `json:"location,omitempty"`
}

// ChatResponse carries the assistant's reply, already stripped of the
// extraction block.
type ChatResponse struct {
	Response string `json:"response"`
}
