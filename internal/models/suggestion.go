package models

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion categories. Anything else a backend ever returns is treated as
// an attraction by the grouping layer, never rejected.
const (
	CategoryFlight     = "flight"
	CategoryHotel      = "hotel"
	CategoryAttraction = "attraction"
	CategoryRestaurant = "restaurant"
	CategoryShop       = "shop"
	CategoryLeisure    = "leisure"
)

// SuggestionLocation is the optional location record on a suggestion. Which
// fields are present depends on the category: flights carry origin and
// destination codes, everything else carries address details.
type SuggestionLocation struct {
	Address     string  `json:"address,omitempty"`
	Latitude    float64 `json:"lat,omitempty"`
	Longitude   float64 `json:"lng,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Hours       string  `json:"hours,omitempty"`
	Origin      string  `json:"origin,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// Suggestion is a single bookable recommendation tied to a conversation.
type Suggestion struct {
	ID             uuid.UUID           `json:"id"`
	ConversationID uuid.UUID           `json:"-"`
	Category       string              `json:"type"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Price          *float64            `json:"price"`
	Rating         *float64            `json:"rating"` // 0-5
	ImageURL       string              `json:"image_url"`
	BookingURL     string              `json:"booking_url"`
	Location       *SuggestionLocation `json:"location"`
	CreatedAt      time.Time           `json:"-"`
}

// PriceValue returns the price or zero, for templates.
func (s Suggestion) PriceValue() float64 {
	if s.Price == nil {
		return 0
	}
	return *s.Price
}

// RatingValue returns the rating or zero, for templates.
func (s Suggestion) RatingValue() float64 {
	if s.Rating == nil {
		return 0
	}
	return *s.Rating
}

// SuggestionList is the GET /api/suggestions/{id} envelope.
type SuggestionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}
