package booking

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// FlightSearchParams describe one flight lookup.
type FlightSearchParams struct {
	OriginCity      string
	DestinationCity string
	DepartureDate   string // YYYY-MM-DD
	Adults          int
}

// FlightResult is the first (cheapest-sorted) offer, flattened.
type FlightResult struct {
	Title           string
	Description     string
	Price           float64
	Currency        string
	OriginCode      string
	DestinationCode string
	BookingURL      string
}

type flightDestinationResponse struct {
	Data []struct {
		ID   string `json:"id"`   // e.g. "LON.AIRPORT"
		Code string `json:"code"` // e.g. "LON"
		Name string `json:"name"`
	} `json:"data"`
}

type flightSearchResponse struct {
	Data struct {
		FlightOffers []struct {
			Token    string `json:"token"`
			Segments []struct {
				DepartureAirport struct {
					Code     string `json:"code"`
					CityName string `json:"cityName"`
				} `json:"departureAirport"`
				ArrivalAirport struct {
					Code     string `json:"code"`
					CityName string `json:"cityName"`
				} `json:"arrivalAirport"`
			} `json:"segments"`
			PriceBreakdown struct {
				Total struct {
					Units        float64 `json:"units"`
					CurrencyCode string  `json:"currencyCode"`
				} `json:"total"`
			} `json:"priceBreakdown"`
		} `json:"flightOffers"`
	} `json:"data"`
}

// SearchFlights resolves both cities to airport ids and returns the first
// offer between them.
func (c *Client) SearchFlights(ctx context.Context, params FlightSearchParams) (*FlightResult, error) {
	l := c.logger.With(
		zap.String("method", "SearchFlights"),
		zap.String("origin", params.OriginCity),
		zap.String("destination", params.DestinationCity),
	)
	l.Info("Starting flight search")

	fromID, fromCode, err := c.lookupAirport(ctx, params.OriginCity)
	if err != nil {
		return nil, err
	}
	toID, toCode, err := c.lookupAirport(ctx, params.DestinationCity)
	if err != nil {
		return nil, err
	}

	adults := params.Adults
	if adults <= 0 {
		adults = 1
	}
	q := url.Values{
		"fromId":     {fromID},
		"toId":       {toID},
		"departDate": {params.DepartureDate},
		"adults":     {strconv.Itoa(adults)},
		"sort":       {"CHEAPEST"},
	}

	var search flightSearchResponse
	if err := c.get(ctx, "/api/v1/flights/searchFlights", q, &search); err != nil {
		return nil, err
	}
	if len(search.Data.FlightOffers) == 0 {
		return nil, fmt.Errorf("no flights found from %q to %q", params.OriginCity, params.DestinationCity)
	}
	offer := search.Data.FlightOffers[0]

	origin, dest := fromCode, toCode
	if len(offer.Segments) > 0 {
		if code := offer.Segments[0].DepartureAirport.Code; code != "" {
			origin = code
		}
		if code := offer.Segments[len(offer.Segments)-1].ArrivalAirport.Code; code != "" {
			dest = code
		}
	}

	return &FlightResult{
		Title:       fmt.Sprintf("Flight %s to %s", origin, dest),
		Description: fmt.Sprintf("%s to %s on %s", params.OriginCity, params.DestinationCity, params.DepartureDate),
		Price:       offer.PriceBreakdown.Total.Units,
		Currency:    offer.PriceBreakdown.Total.CurrencyCode,

		OriginCode:      origin,
		DestinationCode: dest,
		BookingURL: fmt.Sprintf(
			"https://flights.booking.com/flights/%s-%s?depart=%s&adults=%d",
			origin, dest, params.DepartureDate, adults,
		),
	}, nil
}

func (c *Client) lookupAirport(ctx context.Context, city string) (id, code string, err error) {
	var resp flightDestinationResponse
	if err := c.get(ctx, "/api/v1/flights/searchDestination", url.Values{"query": {city}}, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Data) == 0 {
		return "", "", fmt.Errorf("no airport found for %q", city)
	}
	return resp.Data[0].ID, resp.Data[0].Code, nil
}
