package flights

import (
	"strings"

	"flytz/internal/types"
)

func seg(from, dep, to, arr, carrier, number, dur string) types.FlightSegment {
	return types.FlightSegment{
		Departure:   types.Endpoint{IATACode: from, At: dep},
		Arrival:     types.Endpoint{IATACode: to, At: arr},
		CarrierCode: carrier,
		Number:      number,
		Duration:    dur,
	}
}

// demoDeals is the fixed demo inventory. Each call gets fresh copies.
func demoDeals() []types.FlightDeal {
	return []types.FlightDeal{
		{
			ID: "mock-1", Source: types.SourceMock, Airlines: []string{"TK"}, Duration: "16h 20m", Stops: 1,
			Price: types.Price{Total: "485.00", Currency: "USD"},
			Segments: []types.FlightSegment{
				seg("JFK", "2024-05-10T18:00", "IST", "2024-05-11T11:00", "TK", "001", "10h"),
				seg("IST", "2024-05-11T14:00", "BKK", "2024-05-12T03:00", "TK", "068", "9h"),
			},
		},
		{
			ID: "mock-2", Source: types.SourceMock, Airlines: []string{"SQ"}, Duration: "21h 00m", Stops: 0,
			Price: types.Price{Total: "620.00", Currency: "USD"},
			Segments: []types.FlightSegment{
				seg("EWR", "2024-05-10T09:00", "SIN", "2024-05-11T16:00", "SQ", "21", "18h 30m"),
			},
		},
		{
			ID: "mock-3", Source: types.SourceMock, Airlines: []string{"BA"}, Duration: "7h 00m", Stops: 0,
			Price: types.Price{Total: "550.00", Currency: "USD"},
			Segments: []types.FlightSegment{
				seg("JFK", "2024-05-10T18:00", "LHR", "2024-05-11T06:00", "BA", "112", "7h"),
			},
		},
	}
}

// mockDeals filters the demo inventory to the requested region.
func (c *Client) mockDeals(region string, hubs []string) []types.FlightDeal {
	out := []types.FlightDeal{}
	for _, d := range demoDeals() {
		if !mockMatches(region, hubs, d.Destination()) {
			continue
		}
		d.ID = c.newID()
		d.DeepLink = bookingLink(d)
		out = append(out, d)
	}
	sortByPrice(out)
	return out
}

func mockMatches(region string, hubs []string, dest string) bool {
	if region == "Everywhere" {
		return true
	}
	if strings.Contains(region, "Asia") && (dest == "BKK" || dest == "SIN") {
		return true
	}
	if strings.Contains(region, "Europe") && (dest == "LHR" || dest == "IST") {
		return true
	}
	for _, h := range hubs {
		if h == dest {
			return true
		}
	}
	return false
}

func mockHotels(cityCode string) []types.HotelOffer {
	return []types.HotelOffer{
		{ID: "h1", HotelID: "H1", Name: "Grand Hyatt", CityCode: cityCode, Rating: 5, Price: types.Price{Total: "250.00", Currency: "USD"}},
		{ID: "h2", HotelID: "H2", Name: "Ibis Budget", CityCode: cityCode, Rating: 3, Price: types.Price{Total: "85.00", Currency: "USD"}},
		{ID: "h3", HotelID: "H3", Name: "Marriott Downtown", CityCode: cityCode, Rating: 4, Price: types.Price{Total: "180.00", Currency: "USD"}},
	}
}

func mockActivities() []types.ActivityOffer {
	return []types.ActivityOffer{
		{ID: "a1", Name: "City Walking Tour", ShortDescription: "Explore the historic center.", Rating: "4.5", Price: &types.Money{Amount: "25.00", CurrencyCode: "USD"}},
		{ID: "a2", Name: "Museum Entry", ShortDescription: "Skip the line tickets.", Rating: "4.8", Price: &types.Money{Amount: "40.00", CurrencyCode: "USD"}},
	}
}
