package booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.BookingConfig{APIHost: "example.test", APIKey: "k"}, zap.NewNop())
	c.SetBaseURL(srv.URL)
	return c
}

func TestSearchHotels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/hotels/searchDestination", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Rome", r.URL.Query().Get("query"))
		assert.Equal(t, "k", r.Header.Get("X-RapidAPI-Key"))
		w.Write([]byte(`{"data":[{"dest_id":"-126693","search_type":"CITY","label":"Rome, Lazio, Italy"}]}`))
	})
	mux.HandleFunc("/api/v1/hotels/searchHotels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-126693", r.URL.Query().Get("dest_id"))
		assert.Equal(t, "1000", r.URL.Query().Get("price_max"))
		w.Write([]byte(`{"data":{"hotels":[{"hotel_id":42,"accessibilityLabel":"Hotel Roma. 4 stars.","property":{"name":"Hotel Roma","reviewScore":8.4,"photoUrls":["https://img.test/hotel.jpg"],"priceBreakdown":{"grossPrice":{"value":640.5,"currency":"EUR"}}}}]}}`))
	})
	mux.HandleFunc("/api/v1/hotels/getHotelDetails", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("hotel_id"))
		w.Write([]byte(`{"data":{"url":"https://www.booking.com/hotel/it/roma.html","rooms":{"4201":{"photos":[{"url_max1280":"https://img.test/room.jpg"}]}}}}`))
	})

	client := newTestClient(t, mux)

	result, err := client.SearchHotels(context.Background(), HotelSearchParams{
		City:      "Rome",
		Arrival:   "2026-10-01",
		Departure: "2026-10-04",
		PriceMax:  1000,
		Adults:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, "Rome, Lazio, Italy", result.Destination)
	assert.Equal(t, "Hotel Roma", result.Name)
	assert.Equal(t, 640.5, result.Price)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, 8.4, result.Rating)
	assert.Equal(t, "https://www.booking.com/hotel/it/roma.html", result.BookingURL)
	assert.Equal(t, "https://img.test/room.jpg", result.ImageURL())
}

func TestSearchHotelsNoResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/hotels/searchDestination", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	client := newTestClient(t, mux)

	_, err := client.SearchHotels(context.Background(), HotelSearchParams{City: "Nowhere"})
	assert.Error(t, err)
}

func TestSearchHotelsDetailsFailureKeepsSearchResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/hotels/searchDestination", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"dest_id":"1","search_type":"CITY","label":"Lisbon"}]}`))
	})
	mux.HandleFunc("/api/v1/hotels/searchHotels", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"hotels":[{"hotel_id":7,"accessibilityLabel":"desc","property":{"name":"Casa","photoUrls":["https://img.test/casa.jpg"],"priceBreakdown":{"grossPrice":{"value":200,"currency":"EUR"}}}}]}}`))
	})
	mux.HandleFunc("/api/v1/hotels/getHotelDetails", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, mux)

	result, err := client.SearchHotels(context.Background(), HotelSearchParams{City: "Lisbon", Arrival: "2026-09-01", Departure: "2026-09-02"})
	require.NoError(t, err)
	assert.Equal(t, "Casa", result.Name)
	// Room photo never arrived, fall back to the property photo.
	assert.Equal(t, "https://img.test/casa.jpg", result.ImageURL())
}

func TestSearchFlights(t *testing.T) {
	lookups := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/flights/searchDestination", func(w http.ResponseWriter, r *http.Request) {
		lookups++
		if r.URL.Query().Get("query") == "London" {
			w.Write([]byte(`{"data":[{"id":"LON.CITY","code":"LON","name":"London"}]}`))
			return
		}
		w.Write([]byte(`{"data":[{"id":"PAR.CITY","code":"PAR","name":"Paris"}]}`))
	})
	mux.HandleFunc("/api/v1/flights/searchFlights", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "LON.CITY", r.URL.Query().Get("fromId"))
		assert.Equal(t, "PAR.CITY", r.URL.Query().Get("toId"))
		w.Write([]byte(`{"data":{"flightOffers":[{"token":"t1","segments":[{"departureAirport":{"code":"LHR","cityName":"London"},"arrivalAirport":{"code":"CDG","cityName":"Paris"}}],"priceBreakdown":{"total":{"units":89,"currencyCode":"EUR"}}}]}}`))
	})

	client := newTestClient(t, mux)

	result, err := client.SearchFlights(context.Background(), FlightSearchParams{
		OriginCity:      "London",
		DestinationCity: "Paris",
		DepartureDate:   "2026-10-01",
		Adults:          1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, lookups)
	assert.Equal(t, "LHR", result.OriginCode)
	assert.Equal(t, "CDG", result.DestinationCode)
	assert.Equal(t, 89.0, result.Price)
	assert.Contains(t, result.BookingURL, "LHR-CDG")
}

func TestDisabledClient(t *testing.T) {
	client := NewClient(config.BookingConfig{}, zap.NewNop())
	assert.False(t, client.Enabled())

	_, err := client.SearchHotels(context.Background(), HotelSearchParams{City: "Rome"})
	assert.Error(t, err)
}
