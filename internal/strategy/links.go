package strategy

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"flytz/internal/types"
)

const (
	googleFlightsBase = "https://www.google.com/travel/flights?q="
	googleExploreBase = "https://www.google.com/travel/explore?q="
	skyscannerBase    = "https://www.skyscanner.com/transport/flights/"
	kayakBase         = "https://www.kayak.com/flights/"
)

// firstCode reduces a node label such as "LHR/AMS" to its first code.
func firstCode(node string) string {
	code, _, _ := strings.Cut(node, "/")
	return code
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// legCode is the endpoint form used inside leg deep links.
func legCode(node string) string {
	return prefix(firstCode(node), 3)
}

// skyscannerDate turns YYYY-MM-DD into YYMMDD.
func skyscannerDate(date string) string {
	if len(date) <= 2 {
		return ""
	}
	return strings.ReplaceAll(date[2:], "-", "")
}

// encodeURIComponent escapes a query value the way browsers do, so spaces
// become %20 and the marks !'()* stay literal.
func encodeURIComponent(s string) string {
	r := strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
	return r.Replace(url.QueryEscape(s))
}

// GoogleLegURL deep-links a single leg on Google Flights.
func GoogleLegURL(origin, dest, date string) string {
	return fmt.Sprintf("%sFlights+from+%s+to+%s+on+%s", googleFlightsBase, legCode(origin), legCode(dest), date)
}

// SkyscannerLegURL deep-links a single leg on Skyscanner.
func SkyscannerLegURL(origin, dest, date string) string {
	return fmt.Sprintf("%s%s/%s/%s", skyscannerBase, legCode(origin), legCode(dest), skyscannerDate(date))
}

// stepLinks builds the per-leg booking links for multi-leg patterns.
func stepLinks(origin, hubNode, dest, date string) []types.BookingStepLink {
	hub := firstCode(hubNode)
	return []types.BookingStepLink{
		{
			Label:    fmt.Sprintf("Book Leg 1: %s → %s", origin, hub),
			Provider: types.ProviderGoogleFlights,
			URL:      GoogleLegURL(origin, hub, date),
		},
		{
			Label:    fmt.Sprintf("Book Leg 2: %s → %s", hub, dest),
			Provider: types.ProviderSkyscanner,
			URL:      SkyscannerLegURL(hub, dest, date),
		},
	}
}

// searchLinks builds the metasearch links shown under a strategy.
func searchLinks(origin, dest, date string) []types.SearchLink {
	safeOrigin := prefix(origin, 3)
	safeDest := "anywhere"
	if utf8.RuneCountInString(dest) == 3 {
		safeDest = dest
	}

	return []types.SearchLink{
		{
			Provider: types.ProviderGoogleFlights,
			Label:    "Launch Precise Search",
			URL:      googleFlightsBase + encodeURIComponent(fmt.Sprintf("Flights from %s to %s on %s", origin, dest, date)),
			Primary:  true,
		},
		{
			Provider: types.ProviderGoogleExplore,
			Label:    "Explore Map Radius",
			URL:      googleExploreBase + "Flights+from+" + origin,
		},
		{
			Provider: types.ProviderSkyscanner,
			Label:    "Compare on Skyscanner",
			URL:      fmt.Sprintf("%s%s/%s/%s", skyscannerBase, safeOrigin, safeDest, skyscannerDate(date)),
		},
		{
			Provider: types.ProviderKayak,
			Label:    "Compare on Kayak",
			URL:      fmt.Sprintf("%s%s-%s/%s", kayakBase, safeOrigin, prefix(safeDest, 3), date),
		},
	}
}
