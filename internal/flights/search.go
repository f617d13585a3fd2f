package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"flytz/internal/logging"
	"flytz/internal/types"

	"golang.org/x/sync/errgroup"
)

// amadeusOffer is the subset of a flight-offer we read. The full offer is kept
// verbatim in FlightDeal.RawOffer for pricing.
type amadeusOffer struct {
	ID    string `json:"id"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
		Base     string `json:"base"`
		Fees     []struct {
			Amount string `json:"amount"`
			Type   string `json:"type"`
		} `json:"fees"`
	} `json:"price"`
	Itineraries []struct {
		Duration string           `json:"duration"`
		Segments []amadeusSegment `json:"segments"`
	} `json:"itineraries"`
	TravelerPricings []struct {
		FareDetailsBySegment []struct {
			Cabin               string `json:"cabin"`
			Class               string `json:"class"`
			IncludedCheckedBags *struct {
				Quantity   int    `json:"quantity"`
				Weight     int    `json:"weight"`
				WeightUnit string `json:"weightUnit"`
			} `json:"includedCheckedBags"`
			Amenities []struct {
				Description string `json:"description"`
			} `json:"amenities"`
		} `json:"fareDetailsBySegment"`
	} `json:"travelerPricings"`
}

type amadeusSegment struct {
	Departure struct {
		IATACode string `json:"iataCode"`
		Terminal string `json:"terminal"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IATACode string `json:"iataCode"`
		Terminal string `json:"terminal"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
	Duration    string `json:"duration"`
	Aircraft    struct {
		Code string `json:"code"`
	} `json:"aircraft"`
}

type offersResponse struct {
	Data []json.RawMessage `json:"data"`
}

// SearchDeals finds priced itineraries from the profile's first home airport
// to the trip's first destination. Up to maxHubs hubs are searched
// concurrently; failing hubs are skipped. Results are sorted by price.
func (c *Client) SearchDeals(ctx context.Context, profile types.FlightProfile, trip types.TripPlan) ([]types.FlightDeal, error) {
	region := trip.PrimaryDestination()
	if region == "" {
		region = "Everywhere"
	}
	hubs := HubsFor(region)

	token := c.tokenOrDemo(ctx, "SearchDeals")
	if token == "" {
		deals := c.mockDeals(region, hubs)
		logging.Flights("Demo search %s: %d deals", region, len(deals))
		return deals, nil
	}

	origin := profile.PrimaryOrigin()
	if origin == "" {
		origin = "NYC"
	}
	if len(hubs) > c.maxHubs {
		hubs = hubs[:c.maxHubs]
	}

	perHub := make([][]types.FlightDeal, len(hubs))
	g, gctx := errgroup.WithContext(ctx)
	for i, hub := range hubs {
		g.Go(func() error {
			deals, err := c.searchHub(gctx, token, origin, hub, trip.StartDate)
			if err != nil {
				logging.FlightsWarn("Search failed for %s: %v", hub, err)
				return nil
			}
			perHub[i] = deals
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := []types.FlightDeal{}
	for _, deals := range perHub {
		results = append(results, deals...)
	}
	sortByPrice(results)
	logging.Flights("Search %s -> %s (%s): %d deals", origin, region, strings.Join(hubs, ","), len(results))
	return results, nil
}

func (c *Client) searchHub(ctx context.Context, token, origin, hub, date string) ([]types.FlightDeal, error) {
	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", hub)
	q.Set("departureDate", date)
	q.Set("adults", "1")
	q.Set("max", "5")
	q.Set("currencyCode", "USD")

	var resp offersResponse
	if err := c.getJSON(ctx, token, pathFlightOffers, q, &resp); err != nil {
		return nil, err
	}

	deals := make([]types.FlightDeal, 0, len(resp.Data))
	for _, raw := range resp.Data {
		d, err := mapOffer(raw)
		if err != nil {
			logging.FlightsWarn("Skipping offer from %s: %v", hub, err)
			continue
		}
		deals = append(deals, d)
	}
	return deals, nil
}

// mapOffer converts one raw flight-offer into a FlightDeal.
func mapOffer(raw json.RawMessage) (types.FlightDeal, error) {
	var o amadeusOffer
	if err := json.Unmarshal(raw, &o); err != nil {
		return types.FlightDeal{}, err
	}
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return types.FlightDeal{}, fmt.Errorf("offer %s has no segments", o.ID)
	}
	itin := o.Itineraries[0]

	segments := make([]types.FlightSegment, 0, len(itin.Segments))
	for _, s := range itin.Segments {
		segments = append(segments, types.FlightSegment{
			Departure:    types.Endpoint{IATACode: s.Departure.IATACode, At: s.Departure.At, Terminal: s.Departure.Terminal},
			Arrival:      types.Endpoint{IATACode: s.Arrival.IATACode, At: s.Arrival.At, Terminal: s.Arrival.Terminal},
			CarrierCode:  s.CarrierCode,
			Number:       s.Number,
			Duration:     s.Duration,
			AircraftCode: s.Aircraft.Code,
		})
	}

	d := types.FlightDeal{
		ID:       o.ID,
		Source:   types.SourceAmadeus,
		RawOffer: append(json.RawMessage(nil), raw...),
		Price: types.Price{
			Total:    o.Price.Total,
			Currency: o.Price.Currency,
			Base:     o.Price.Base,
		},
		Airlines:         []string{itin.Segments[0].CarrierCode},
		Segments:         segments,
		Duration:         formatISODuration(itin.Duration),
		Stops:            len(itin.Segments) - 1,
		LayoverDurations: layovers(segments),
	}

	if len(o.TravelerPricings) > 0 && len(o.TravelerPricings[0].FareDetailsBySegment) > 0 {
		fds := o.TravelerPricings[0].FareDetailsBySegment
		d.FareClass = fds[0].Cabin
		for i := range d.Segments {
			if i < len(fds) {
				d.Segments[i].Cabin = fds[i].Cabin
				for _, a := range fds[i].Amenities {
					d.Segments[i].Amenities = append(d.Segments[i].Amenities, a.Description)
				}
			}
		}
		if bags := fds[0].IncludedCheckedBags; bags != nil {
			d.BaggageInfo = &types.BaggageInfo{IncludedCheckedBags: bags.Quantity, Unit: bags.WeightUnit}
		}
	}

	d.DeepLink = bookingLink(d)
	return d, nil
}

// formatISODuration turns "PT16H20M" into "16h20m".
func formatISODuration(d string) string {
	return strings.ToLower(strings.Replace(d, "PT", "", 1))
}

var segmentLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseSegmentTime(s string) (time.Time, bool) {
	for _, layout := range segmentLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// layovers computes ground time between consecutive segments. Local times are
// compared as-is; connections happen at a single airport so the zones match.
func layovers(segments []types.FlightSegment) []string {
	if len(segments) < 2 {
		return nil
	}
	out := make([]string, 0, len(segments)-1)
	for i := 0; i < len(segments)-1; i++ {
		arr, ok1 := parseSegmentTime(segments[i].Arrival.At)
		dep, ok2 := parseSegmentTime(segments[i+1].Departure.At)
		if !ok1 || !ok2 || dep.Before(arr) {
			out = append(out, "")
			continue
		}
		gap := dep.Sub(arr)
		out = append(out, fmt.Sprintf("%dh %02dm", int(gap.Hours()), int(gap.Minutes())%60))
	}
	return out
}

// bookingLink builds the Google Flights link for a deal.
func bookingLink(d types.FlightDeal) string {
	if len(d.Segments) == 0 {
		return ""
	}
	date, _, _ := strings.Cut(d.Segments[0].Departure.At, "T")
	return fmt.Sprintf("https://www.google.com/travel/flights?q=Flights+to+%s+from+%s+on+%s", d.Destination(), d.Origin(), date)
}

func sortByPrice(deals []types.FlightDeal) {
	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].Price.Amount() < deals[j].Price.Amount()
	})
}
