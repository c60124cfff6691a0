package booking

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// HotelSearchParams describe one hotel lookup.
type HotelSearchParams struct {
	City      string
	Arrival   string // YYYY-MM-DD
	Departure string // YYYY-MM-DD
	PriceMax  int
	Adults    int
}

// HotelResult is the first matching property, flattened to what the
// suggestion pipeline stores. Rating keeps Booking.com's 10-point scale;
// callers map it down.
type HotelResult struct {
	Destination  string
	HotelID      int64
	Name         string
	Description  string
	Price        float64
	Currency     string
	Rating       float64
	PhotoURLs    []string
	RoomPhotoURL string
	BookingURL   string
}

type destinationResponse struct {
	Data []struct {
		DestID     string `json:"dest_id"`
		SearchType string `json:"search_type"`
		Label      string `json:"label"`
	} `json:"data"`
}

type hotelSearchResponse struct {
	Data struct {
		Hotels []struct {
			HotelID            int64  `json:"hotel_id"`
			AccessibilityLabel string `json:"accessibilityLabel"`
			Property           struct {
				Name           string   `json:"name"`
				ReviewScore    float64  `json:"reviewScore"`
				PhotoURLs      []string `json:"photoUrls"`
				URL            string   `json:"url"`
				PriceBreakdown struct {
					GrossPrice struct {
						Value    float64 `json:"value"`
						Currency string  `json:"currency"`
					} `json:"grossPrice"`
				} `json:"priceBreakdown"`
			} `json:"property"`
		} `json:"hotels"`
	} `json:"data"`
}

type hotelDetailsResponse struct {
	Data struct {
		URL   string `json:"url"`
		Rooms map[string]struct {
			Photos []struct {
				URLMax1280 string `json:"url_max1280"`
			} `json:"photos"`
		} `json:"rooms"`
	} `json:"data"`
}

// SearchHotels runs the destination lookup, hotel search and detail fetch,
// returning the first hotel found.
func (c *Client) SearchHotels(ctx context.Context, params HotelSearchParams) (*HotelResult, error) {
	l := c.logger.With(zap.String("method", "SearchHotels"), zap.String("city", params.City))
	l.Info("Starting hotel search")

	var dest destinationResponse
	q := url.Values{"query": {params.City}}
	if err := c.get(ctx, "/api/v1/hotels/searchDestination", q, &dest); err != nil {
		return nil, err
	}
	if len(dest.Data) == 0 {
		return nil, fmt.Errorf("no destination found for %q", params.City)
	}
	destination := dest.Data[0]

	adults := params.Adults
	if adults <= 0 {
		adults = 1
	}
	q = url.Values{
		"dest_id":        {destination.DestID},
		"search_type":    {destination.SearchType},
		"arrival_date":   {params.Arrival},
		"departure_date": {params.Departure},
		"adults":         {strconv.Itoa(adults)},
	}
	if params.PriceMax > 0 {
		q.Set("price_max", strconv.Itoa(params.PriceMax))
	}

	var search hotelSearchResponse
	if err := c.get(ctx, "/api/v1/hotels/searchHotels", q, &search); err != nil {
		return nil, err
	}
	if len(search.Data.Hotels) == 0 {
		return nil, fmt.Errorf("no hotels found for %q", params.City)
	}
	first := search.Data.Hotels[0]

	result := &HotelResult{
		Destination: destination.Label,
		HotelID:     first.HotelID,
		Name:        first.Property.Name,
		Description: first.AccessibilityLabel,
		Price:       first.Property.PriceBreakdown.GrossPrice.Value,
		Currency:    first.Property.PriceBreakdown.GrossPrice.Currency,
		Rating:      first.Property.ReviewScore,
		PhotoURLs:   first.Property.PhotoURLs,
		BookingURL:  first.Property.URL,
	}
	if result.BookingURL == "" {
		result.BookingURL = "https://www.booking.com/searchresults.html?ss=" + url.QueryEscape(params.City)
	}

	// Details are best effort: a better URL and a room photo when available.
	var details hotelDetailsResponse
	q = url.Values{
		"hotel_id":       {strconv.FormatInt(first.HotelID, 10)},
		"arrival_date":   {params.Arrival},
		"departure_date": {params.Departure},
	}
	if err := c.get(ctx, "/api/v1/hotels/getHotelDetails", q, &details); err != nil {
		l.Warn("Hotel details fetch failed, keeping search results", zap.Error(err))
		return result, nil
	}
	if details.Data.URL != "" {
		result.BookingURL = details.Data.URL
	}
	for _, room := range details.Data.Rooms {
		for _, photo := range room.Photos {
			if photo.URLMax1280 != "" {
				result.RoomPhotoURL = photo.URLMax1280
				break
			}
		}
		if result.RoomPhotoURL != "" {
			break
		}
	}

	return result, nil
}

// ImageURL picks the best available image: room photo first, then the first
// property photo.
func (h *HotelResult) ImageURL() string {
	if h.RoomPhotoURL != "" {
		return h.RoomPhotoURL
	}
	if len(h.PhotoURLs) > 0 {
		return h.PhotoURLs[0]
	}
	return ""
}
