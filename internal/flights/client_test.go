package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flytz/internal/config"
	"flytz/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeAmadeus is an httptest server speaking just enough of the Amadeus API.
type fakeAmadeus struct {
	srv *httptest.Server

	tokenCalls  atomic.Int32
	offerCalls  atomic.Int32
	failHub     string
	rejectPrice bool

	mu          sync.Mutex
	searched    []string
	pricedBody  []byte
	lastHotelQS string
}

func offerJSON(id, from, to, total string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"price": {"total": %q, "currency": "USD", "base": "400.00"},
		"itineraries": [{
			"duration": "PT16H20M",
			"segments": [
				{"departure": {"iataCode": %q, "at": "2025-05-10T18:00:00", "terminal": "4"},
				 "arrival": {"iataCode": "IST", "at": "2025-05-11T11:00:00"},
				 "carrierCode": "TK", "number": "1", "duration": "PT10H", "aircraft": {"code": "77W"}},
				{"departure": {"iataCode": "IST", "at": "2025-05-11T14:30:00"},
				 "arrival": {"iataCode": %q, "at": "2025-05-12T03:00:00"},
				 "carrierCode": "TK", "number": "68", "duration": "PT9H"}
			]
		}],
		"travelerPricings": [{"fareDetailsBySegment": [
			{"cabin": "ECONOMY", "class": "V", "includedCheckedBags": {"quantity": 1}},
			{"cabin": "ECONOMY", "class": "V"}
		]}]
	}`, id, total, from, to)
}

func newFakeAmadeus(t *testing.T, opts ...func(*fakeAmadeus)) *fakeAmadeus {
	t.Helper()
	f := &fakeAmadeus{}
	for _, opt := range opts {
		opt(f)
	}
	mux := http.NewServeMux()

	mux.HandleFunc(pathToken, func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("grant_type") != "client_credentials" || r.PostForm.Get("client_secret") != "secret" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":1799}`, f.tokenCalls.Load())
	})

	mux.HandleFunc(pathFlightOffers, func(w http.ResponseWriter, r *http.Request) {
		f.offerCalls.Add(1)
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		hub := q.Get("destinationLocationCode")
		f.mu.Lock()
		f.searched = append(f.searched, hub)
		f.mu.Unlock()
		if hub == f.failHub {
			http.Error(w, `{"errors":[{"detail":"boom"}]}`, http.StatusInternalServerError)
			return
		}
		origin := q.Get("originLocationCode")
		switch hub {
		case "BKK":
			fmt.Fprintf(w, `{"data":[%s,%s]}`, offerJSON("b1", origin, hub, "900.00"), offerJSON("b2", origin, hub, "450.50"))
		default:
			fmt.Fprintf(w, `{"data":[%s]}`, offerJSON(hub+"1", origin, hub, "600.00"))
		}
	})

	mux.HandleFunc(pathPricing, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		f.mu.Lock()
		f.pricedBody = body
		f.mu.Unlock()
		if f.rejectPrice {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"errors":[{"code":4926,"detail":"Fare no longer available"}]}`)
			return
		}
		fmt.Fprint(w, `{"data":{"type":"flight-offers-pricing","flightOffers":[{"price":{"total":"512.30"}}]}}`)
	})

	mux.HandleFunc(pathLocations, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AIRPORT,CITY", r.URL.Query().Get("subType"))
		assert.Equal(t, "10", r.URL.Query().Get("page[limit]"))
		fmt.Fprint(w, `{"data":[
			{"name":"LISBON","iataCode":"LIS","subType":"CITY","address":{"countryName":"PORTUGAL"}},
			{"name":"HUMBERTO DELGADO","iataCode":"LIS","subType":"AIRPORT","address":{"countryName":"PORTUGAL"}}
		]}`)
	})

	mux.HandleFunc(pathHotelsByCity, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"hotelId":"A"},{"hotelId":"B"},{"hotelId":"C"},{"hotelId":"D"},{"hotelId":"E"},{"hotelId":"F"}]}`)
	})

	mux.HandleFunc(pathHotelOffers, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastHotelQS = r.URL.Query().Get("hotelIds")
		f.mu.Unlock()
		fmt.Fprint(w, `{"data":[
			{"hotel":{"hotelId":"A","name":"Alfama Inn","cityCode":"LIS","rating":"4"},
			 "offers":[{"id":"OA","price":{"total":"120.00","currency":"EUR"},"room":{"description":{"text":"Double room"}}}]},
			{"hotel":{"hotelId":"B","name":"No Offers"},"offers":[]}
		]}`)
	})

	mux.HandleFunc(pathActivities, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("radius"))
		fmt.Fprint(w, `{"data":[{"id":"42","name":"Tram 28 Tour","rating":4.7,
			"price":{"amount":"30.00","currencyCode":"EUR"},
			"geoCode":{"latitude":"38.71","longitude":-9.14}}]}`)
	})

	mux.HandleFunc(pathInspiration, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"origin":%q,"destination":"MAD","departureDate":"2025-06-01","returnDate":"2025-06-08","price":{"total":"199.00"},"links":{"flightOffers":"x"}}]}`,
			r.URL.Query().Get("origin"))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAmadeus) searchedHubs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searched...)
}

func (f *fakeAmadeus) lastPriced() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pricedBody
}

func (f *fakeAmadeus) lastHotelIDs() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHotelQS
}

func (f *fakeAmadeus) client(opts ...Option) *Client {
	cfg := config.AmadeusConfig{ClientID: "id", ClientSecret: "secret", BaseURL: f.srv.URL, MaxHubs: 2}
	base := []Option{WithHTTPClient(f.srv.Client()), WithLimiter(rate.NewLimiter(rate.Inf, 1))}
	return NewClient(cfg, append(base, opts...)...)
}

func demoClient() *Client {
	n := 0
	return NewClient(config.AmadeusConfig{}, WithIDSource(func() string {
		n++
		return fmt.Sprintf("demo-%d", n)
	}))
}

// =============================================================================
// DEMO MODE
// =============================================================================

func TestDemo_Disabled(t *testing.T) {
	c := demoClient()
	assert.False(t, c.Enabled())
}

func TestDemo_SearchDealsFilters(t *testing.T) {
	tests := []struct {
		region string
		want   []string // destinations, in price order
	}{
		{"Everywhere", []string{"BKK", "LHR", "SIN"}},
		{"Southeast Asia", []string{"BKK", "SIN"}},
		{"Western Europe", []string{"LHR"}},
		{"UK", []string{"LHR"}},
		{"SIN", []string{"SIN"}},
		{"Japan", nil},
	}
	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			deals, err := demoClient().SearchDeals(context.Background(),
				types.FlightProfile{HomeAirports: []string{"JFK"}},
				types.TripPlan{DestinationRegions: []string{tt.region}})
			require.NoError(t, err)

			var got []string
			for _, d := range deals {
				got = append(got, d.Destination())
				assert.Equal(t, types.SourceMock, d.Source)
				assert.Contains(t, d.DeepLink, "Flights+to+"+d.Destination()+"+from+"+d.Origin())
				assert.Empty(t, d.RawOffer)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDemo_SearchDealsFreshIDs(t *testing.T) {
	c := demoClient()
	deals, err := c.SearchDeals(context.Background(), types.FlightProfile{}, types.TripPlan{})
	require.NoError(t, err)
	require.Len(t, deals, 3)
	assert.Equal(t, "demo-1", deals[0].ID)
	assert.Equal(t, "485.00", deals[0].Price.Total)
	assert.Equal(t, "https://www.google.com/travel/flights?q=Flights+to+BKK+from+JFK+on+2024-05-10", deals[0].DeepLink)
}

func TestDemo_Extras(t *testing.T) {
	ctx := context.Background()
	c := demoClient()

	hotels := c.SearchHotels(ctx, "PAR")
	require.Len(t, hotels, 3)
	assert.Equal(t, "Grand Hyatt", hotels[0].Name)
	assert.Equal(t, "PAR", hotels[2].CityCode)

	acts := c.SearchActivities(ctx, 1, 2)
	require.Len(t, acts, 2)
	assert.Equal(t, "4.8", acts[1].Rating)

	assert.Empty(t, c.Inspiration(ctx, "JFK"))
	assert.NotNil(t, c.Inspiration(ctx, "JFK"))
}

func TestDemo_ConfirmPrice(t *testing.T) {
	c := demoClient()

	conf, err := c.ConfirmPrice(context.Background(), json.RawMessage(`{"price":{"total":"77.00"}}`))
	require.NoError(t, err)
	assert.True(t, conf.Confirmed)
	assert.Equal(t, "77.00", conf.Price)

	_, err = c.ConfirmPrice(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotVerifiable)

	_, err = c.ConfirmPrice(context.Background(), json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestDemo_SearchLocations(t *testing.T) {
	c := demoClient()
	ctx := context.Background()

	assert.Empty(t, c.SearchLocations(ctx, "L"))

	got := c.SearchLocations(ctx, "lon")
	var values []string
	for _, o := range got {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{"LON", "LHR", "London"}, values)

	byKeyword := c.SearchLocations(ctx, "hnd")
	require.Len(t, byKeyword, 1)
	assert.Equal(t, "TYO", byKeyword[0].Value)
}

// =============================================================================
// LIVE MODE AGAINST THE FAKE
// =============================================================================

func TestSearchDeals_ConcurrentHubsSorted(t *testing.T) {
	f := newFakeAmadeus(t)
	c := f.client()

	deals, err := c.SearchDeals(context.Background(),
		types.FlightProfile{HomeAirports: []string{"JFK"}},
		types.TripPlan{DestinationRegions: []string{"Southeast Asia"}, StartDate: "2025-05-10"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"BKK", "SIN"}, f.searchedHubs(), "only the first two hubs are searched")
	require.Len(t, deals, 3)
	assert.Equal(t, []string{"b2", "SIN1", "b1"}, []string{deals[0].ID, deals[1].ID, deals[2].ID})

	d := deals[0]
	assert.Equal(t, types.SourceAmadeus, d.Source)
	assert.Equal(t, "16h20m", d.Duration)
	assert.Equal(t, 1, d.Stops)
	assert.Equal(t, []string{"TK"}, d.Airlines)
	assert.Equal(t, "ECONOMY", d.FareClass)
	assert.Equal(t, []string{"3h 30m"}, d.LayoverDurations)
	require.NotNil(t, d.BaggageInfo)
	assert.Equal(t, 1, d.BaggageInfo.IncludedCheckedBags)
	assert.Equal(t, "77W", d.Segments[0].AircraftCode)
	assert.Equal(t, "4", d.Segments[0].Departure.Terminal)
	assert.Equal(t, "https://www.google.com/travel/flights?q=Flights+to+BKK+from+JFK+on+2025-05-10", d.DeepLink)
	assert.NotEmpty(t, d.RawOffer)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestSearchDeals_FailedHubSkipped(t *testing.T) {
	f := newFakeAmadeus(t, func(f *fakeAmadeus) { f.failHub = "BKK" })
	c := f.client()

	deals, err := c.SearchDeals(context.Background(),
		types.FlightProfile{HomeAirports: []string{"JFK"}},
		types.TripPlan{DestinationRegions: []string{"Southeast Asia"}, StartDate: "2025-05-10"})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "SIN", deals[0].Destination())
}

func TestSearchDeals_UnknownRegionUsesFallbackHubs(t *testing.T) {
	f := newFakeAmadeus(t)
	c := f.client()

	_, err := c.SearchDeals(context.Background(), types.FlightProfile{}, types.TripPlan{DestinationRegions: []string{"Atlantis"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"LHR", "IST"}, f.searchedHubs())
}

func TestSearchDeals_AuthFailureFallsBackToDemo(t *testing.T) {
	f := newFakeAmadeus(t)
	cfg := config.AmadeusConfig{ClientID: "id", ClientSecret: "wrong", BaseURL: f.srv.URL}
	c := NewClient(cfg, WithHTTPClient(f.srv.Client()))

	deals, err := c.SearchDeals(context.Background(), types.FlightProfile{}, types.TripPlan{DestinationRegions: []string{"Everywhere"}})
	require.NoError(t, err)
	require.Len(t, deals, 3)
	assert.Equal(t, types.SourceMock, deals[0].Source)
	assert.Zero(t, f.offerCalls.Load())
}

func TestSearchDeals_CancelledContext(t *testing.T) {
	f := newFakeAmadeus(t)
	c := f.client()
	_, err := c.accessToken(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SearchDeals(ctx, types.FlightProfile{}, types.TripPlan{DestinationRegions: []string{"Japan"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAccessToken_CachedUntilExpiry(t *testing.T) {
	f := newFakeAmadeus(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := f.client(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	tok1, err := c.accessToken(ctx)
	require.NoError(t, err)
	tok2, err := c.accessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	// expires_in 1799s minus the 60s margin
	now = now.Add(1738 * time.Second)
	_, err = c.accessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	now = now.Add(2 * time.Second)
	tok3, err := c.accessToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok3)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestValidateCredentials(t *testing.T) {
	f := newFakeAmadeus(t)
	c := NewClient(config.AmadeusConfig{BaseURL: f.srv.URL}, WithHTTPClient(f.srv.Client()))
	ctx := context.Background()

	assert.False(t, c.ValidateCredentials(ctx, "id", "nope"))
	assert.False(t, c.Enabled())

	assert.True(t, c.ValidateCredentials(ctx, "id", "secret"))
	assert.True(t, c.Enabled())

	_, err := c.accessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load(), "validated token is reused")
}

func TestConfirmPrice(t *testing.T) {
	f := newFakeAmadeus(t)
	c := f.client()
	raw := json.RawMessage(offerJSON("x", "JFK", "BKK", "500.00"))

	conf, err := c.ConfirmPrice(context.Background(), raw)
	require.NoError(t, err)
	assert.True(t, conf.Confirmed)
	assert.Equal(t, "512.30", conf.Price)

	var sent pricingRequest
	require.NoError(t, json.Unmarshal(f.lastPriced(), &sent))
	assert.Equal(t, "flight-offers-pricing", sent.Data.Type)
	require.Len(t, sent.Data.FlightOffers, 1)
	assert.JSONEq(t, string(raw), string(sent.Data.FlightOffers[0]))
}

func TestConfirmPrice_Rejected(t *testing.T) {
	f := newFakeAmadeus(t, func(f *fakeAmadeus) { f.rejectPrice = true })
	c := f.client()

	conf, err := c.ConfirmPrice(context.Background(), json.RawMessage(offerJSON("x", "JFK", "BKK", "500.00")))
	require.NoError(t, err)
	assert.False(t, conf.Confirmed)
	assert.Equal(t, "Fare no longer available", conf.Error)
}

func TestConfirmPrice_NetworkError(t *testing.T) {
	f := newFakeAmadeus(t)
	c := f.client()
	_, err := c.accessToken(context.Background())
	require.NoError(t, err)
	f.srv.Close()

	conf, err := c.ConfirmPrice(context.Background(), json.RawMessage(`{"price":{"total":"1"}}`))
	require.NoError(t, err)
	assert.False(t, conf.Confirmed)
	assert.Equal(t, "Network error during verification", conf.Error)
}

func TestSearchLocations_Live(t *testing.T) {
	f := newFakeAmadeus(t)
	got := f.client().SearchLocations(context.Background(), "lis")

	require.Len(t, got, 2)
	assert.Equal(t, types.LocationOption{Label: "LISBON (LIS)", Value: "LIS", Type: types.LocationCity, Keywords: []string{"PORTUGAL"}}, got[0])
	assert.Equal(t, types.LocationAirport, got[1].Type)
}

func TestSearchHotels_Live(t *testing.T) {
	f := newFakeAmadeus(t)
	got := f.client().SearchHotels(context.Background(), "LIS")

	assert.Equal(t, "A,B,C,D,E", f.lastHotelIDs())
	require.Len(t, got, 1)
	assert.Equal(t, "OA", got[0].ID)
	assert.Equal(t, 4.0, got[0].Rating)
	assert.Equal(t, "Double room", got[0].Description)
	assert.Equal(t, "120.00", got[0].Price.Total)
}

func TestSearchActivities_Live(t *testing.T) {
	f := newFakeAmadeus(t)
	got := f.client().SearchActivities(context.Background(), 38.7, -9.1)

	require.Len(t, got, 1)
	assert.Equal(t, "4.7", got[0].Rating)
	require.NotNil(t, got[0].GeoCode)
	assert.InDelta(t, 38.71, got[0].GeoCode.Latitude, 1e-9)
	assert.Equal(t, "EUR", got[0].Price.CurrencyCode)
}

func TestInspiration_Live(t *testing.T) {
	f := newFakeAmadeus(t)
	got := f.client().Inspiration(context.Background(), "BOS")

	require.Len(t, got, 1)
	assert.Equal(t, "BOS", got[0].Origin)
	assert.Equal(t, "199.00", got[0].Price.Total)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestHubsFor(t *testing.T) {
	assert.Equal(t, []string{"HND", "NRT", "KIX"}, HubsFor("Japan"))
	assert.Equal(t, []string{"OPO"}, HubsFor("OPO"))
	assert.Equal(t, []string{"LHR", "IST", "DXB"}, HubsFor("Narnia"))

	h := HubsFor("Korea")
	h[0] = "XXX"
	assert.Equal(t, []string{"ICN"}, HubsFor("Korea"), "table must not be mutated through results")
}

func TestLayovers(t *testing.T) {
	segs := []types.FlightSegment{
		{Arrival: types.Endpoint{At: "2025-01-01T10:00"}},
		{Departure: types.Endpoint{At: "2025-01-01T12:05:00"}, Arrival: types.Endpoint{At: "bad"}},
		{Departure: types.Endpoint{At: "2025-01-02T00:00"}},
	}
	assert.Equal(t, []string{"2h 05m", ""}, layovers(segs))
	assert.Nil(t, layovers(segs[:1]))
}

func TestLookupAirport(t *testing.T) {
	a, ok := LookupAirport(" bkk ")
	require.True(t, ok)
	assert.Equal(t, "Bangkok", a.City)

	_, ok = LookupAirport("ZZZ")
	assert.False(t, ok)
}
