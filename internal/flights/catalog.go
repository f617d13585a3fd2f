package flights

import (
	"strings"

	"flytz/internal/types"
)

// OriginOptions are the built-in departure choices.
var OriginOptions = []types.LocationOption{
	{Label: "New York (NYC - All Airports)", Value: "NYC", Type: types.LocationCity, Keywords: []string{"JFK", "EWR", "LGA"}},
	{Label: "New York (JFK)", Value: "JFK", Type: types.LocationAirport},
	{Label: "Newark (EWR)", Value: "EWR", Type: types.LocationAirport},
	{Label: "Los Angeles (LAX)", Value: "LAX", Type: types.LocationAirport},
	{Label: "San Francisco (SFO)", Value: "SFO", Type: types.LocationAirport},
	{Label: "Chicago (ORD)", Value: "ORD", Type: types.LocationAirport},
	{Label: "Atlanta (ATL)", Value: "ATL", Type: types.LocationAirport},
	{Label: "Dallas (DFW)", Value: "DFW", Type: types.LocationAirport},
	{Label: "Miami (MIA)", Value: "MIA", Type: types.LocationAirport},
	{Label: "Seattle (SEA)", Value: "SEA", Type: types.LocationAirport},

	{Label: "London (LON - All Airports)", Value: "LON", Type: types.LocationCity, Keywords: []string{"LHR", "LGW"}},
	{Label: "London Heathrow (LHR)", Value: "LHR", Type: types.LocationAirport},
	{Label: "Paris (CDG)", Value: "CDG", Type: types.LocationAirport},
	{Label: "Amsterdam (AMS)", Value: "AMS", Type: types.LocationAirport},
	{Label: "Frankfurt (FRA)", Value: "FRA", Type: types.LocationAirport},

	{Label: "Tokyo (TYO - All Airports)", Value: "TYO", Type: types.LocationCity, Keywords: []string{"HND", "NRT"}},
	{Label: "Singapore (SIN)", Value: "SIN", Type: types.LocationAirport},
	{Label: "Dubai (DXB)", Value: "DXB", Type: types.LocationAirport},
}

// DestinationOptions are the built-in destination choices.
var DestinationOptions = []types.LocationOption{
	{Label: "Anywhere", Value: "Everywhere", Type: types.LocationRegion},
	{Label: "Southeast Asia", Value: "Southeast Asia", Type: types.LocationRegion, Keywords: []string{"Thailand", "Vietnam", "Bali"}},
	{Label: "Western Europe", Value: "Western Europe", Type: types.LocationRegion, Keywords: []string{"France", "UK", "Spain"}},
	{Label: "Eastern Europe", Value: "Eastern Europe", Type: types.LocationRegion},
	{Label: "East Asia", Value: "East Asia", Type: types.LocationRegion, Keywords: []string{"Japan", "Korea", "China"}},
	{Label: "South America", Value: "South America", Type: types.LocationRegion},
	{Label: "Central America", Value: "Central America", Type: types.LocationRegion},

	{Label: "Japan", Value: "Japan", Type: types.LocationCountry},
	{Label: "Thailand", Value: "Thailand", Type: types.LocationCountry},
	{Label: "Italy", Value: "Italy", Type: types.LocationCountry},
	{Label: "Portugal", Value: "Portugal", Type: types.LocationCountry},
	{Label: "Mexico", Value: "Mexico", Type: types.LocationCountry},

	{Label: "Tokyo, Japan", Value: "Tokyo", Type: types.LocationCity},
	{Label: "Bangkok, Thailand", Value: "Bangkok", Type: types.LocationCity},
	{Label: "London, UK", Value: "London", Type: types.LocationCity},
	{Label: "Paris, France", Value: "Paris", Type: types.LocationCity},
	{Label: "Bali (Denpasar)", Value: "Denpasar", Type: types.LocationCity},
}

// FilterOptions returns the options whose label, value or keywords contain the
// input, case-insensitively.
func FilterOptions(options []types.LocationOption, input string) []types.LocationOption {
	needle := strings.ToLower(strings.TrimSpace(input))
	out := []types.LocationOption{}
	for _, opt := range options {
		if matchesOption(opt, needle) {
			out = append(out, opt)
		}
	}
	return out
}

func matchesOption(opt types.LocationOption, needle string) bool {
	if strings.Contains(strings.ToLower(opt.Label), needle) || strings.Contains(strings.ToLower(opt.Value), needle) {
		return true
	}
	for _, k := range opt.Keywords {
		if strings.Contains(strings.ToLower(k), needle) {
			return true
		}
	}
	return false
}
