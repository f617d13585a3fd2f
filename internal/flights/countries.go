package flights

import (
	"slices"
	"strings"

	"flytz/internal/types"
)

// DealCountry is the country of the deal's final arrival airport, or "" when
// the airport is not in the reference table.
func DealCountry(d types.FlightDeal) string {
	a, ok := LookupAirport(d.Destination())
	if !ok {
		return ""
	}
	return a.Country
}

// DestinationCountries lists the distinct arrival countries of deals, sorted.
func DestinationCountries(deals []types.FlightDeal) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, d := range deals {
		c := DealCountry(d)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// DealsToCountry keeps the deals arriving in country, case-insensitively, in
// their original order.
func DealsToCountry(deals []types.FlightDeal, country string) []types.FlightDeal {
	country = strings.TrimSpace(country)
	out := []types.FlightDeal{}
	for _, d := range deals {
		if c := DealCountry(d); c != "" && strings.EqualFold(c, country) {
			out = append(out, d)
		}
	}
	return out
}
