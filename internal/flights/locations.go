package flights

import (
	"context"
	"fmt"
	"net/url"

	"flytz/internal/logging"
	"flytz/internal/types"
)

type locationsResponse struct {
	Data []struct {
		Name     string `json:"name"`
		IATACode string `json:"iataCode"`
		SubType  string `json:"subType"`
		Address  struct {
			CityName    string `json:"cityName"`
			CountryName string `json:"countryName"`
		} `json:"address"`
	} `json:"data"`
}

// SearchLocations autocompletes airports and cities. Keywords shorter than two
// characters return nothing. Without a token the built-in catalog is filtered.
func (c *Client) SearchLocations(ctx context.Context, keyword string) []types.LocationOption {
	if len([]rune(keyword)) < 2 {
		return []types.LocationOption{}
	}

	token := c.tokenOrDemo(ctx, "SearchLocations")
	if token == "" {
		all := append(append([]types.LocationOption(nil), OriginOptions...), DestinationOptions...)
		return FilterOptions(all, keyword)
	}

	q := url.Values{}
	q.Set("subType", "AIRPORT,CITY")
	q.Set("keyword", keyword)
	q.Set("page[limit]", "10")

	var resp locationsResponse
	if err := c.getJSON(ctx, token, pathLocations, q, &resp); err != nil {
		logging.FlightsWarn("Location search %q failed: %v", keyword, err)
		return []types.LocationOption{}
	}

	out := make([]types.LocationOption, 0, len(resp.Data))
	for _, loc := range resp.Data {
		typ := types.LocationCity
		if loc.SubType == "AIRPORT" {
			typ = types.LocationAirport
		}
		opt := types.LocationOption{
			Label: fmt.Sprintf("%s (%s)", loc.Name, loc.IATACode),
			Value: loc.IATACode,
			Type:  typ,
		}
		if loc.Address.CountryName != "" {
			opt.Keywords = []string{loc.Address.CountryName}
		}
		out = append(out, opt)
	}
	return out
}
