package flights

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"flytz/internal/logging"
	"flytz/internal/types"
)

// maxHotelOffers caps how many hotels from the city list are priced.
const maxHotelOffers = 5

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexString accepts a JSON string or number and keeps its text.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*f = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*f = flexString(s)
	return nil
}

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID   string    `json:"hotelId"`
			Name      string    `json:"name"`
			CityCode  string    `json:"cityCode"`
			Rating    flexFloat `json:"rating"`
			Latitude  float64   `json:"latitude"`
			Longitude float64   `json:"longitude"`
			Amenities []string  `json:"amenities"`
			Media     []struct {
				URI      string `json:"uri"`
				Category string `json:"category"`
			} `json:"media"`
		} `json:"hotel"`
		Offers []struct {
			ID    string `json:"id"`
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
				Base     string `json:"base"`
			} `json:"price"`
			Room struct {
				Description struct {
					Text string `json:"text"`
				} `json:"description"`
			} `json:"room"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels lists hotels in a city and prices the first few. Without a
// token it returns demo hotels.
func (c *Client) SearchHotels(ctx context.Context, cityCode string) []types.HotelOffer {
	token := c.tokenOrDemo(ctx, "SearchHotels")
	if token == "" {
		return mockHotels(cityCode)
	}

	var list hotelListResponse
	if err := c.getJSON(ctx, token, pathHotelsByCity, url.Values{"cityCode": {cityCode}}, &list); err != nil {
		logging.FlightsWarn("Hotel list for %s failed: %v", cityCode, err)
		return []types.HotelOffer{}
	}
	ids := make([]string, 0, maxHotelOffers)
	for _, h := range list.Data {
		if len(ids) == maxHotelOffers {
			break
		}
		ids = append(ids, h.HotelID)
	}
	if len(ids) == 0 {
		return []types.HotelOffer{}
	}

	q := url.Values{}
	q.Set("hotelIds", strings.Join(ids, ","))
	q.Set("adults", "1")
	var offers hotelOffersResponse
	if err := c.getJSON(ctx, token, pathHotelOffers, q, &offers); err != nil {
		logging.FlightsWarn("Hotel offers for %s failed: %v", cityCode, err)
		return []types.HotelOffer{}
	}

	out := make([]types.HotelOffer, 0, len(offers.Data))
	for _, item := range offers.Data {
		if len(item.Offers) == 0 {
			continue
		}
		first := item.Offers[0]
		h := types.HotelOffer{
			ID:          first.ID,
			HotelID:     item.Hotel.HotelID,
			Name:        item.Hotel.Name,
			CityCode:    item.Hotel.CityCode,
			Rating:      float64(item.Hotel.Rating),
			Latitude:    item.Hotel.Latitude,
			Longitude:   item.Hotel.Longitude,
			Price:       types.Price{Total: first.Price.Total, Currency: first.Price.Currency, Base: first.Price.Base},
			Description: first.Room.Description.Text,
			Amenities:   item.Hotel.Amenities,
		}
		for _, m := range item.Hotel.Media {
			h.Media = append(h.Media, types.HotelMedia{URI: m.URI, Category: m.Category})
		}
		out = append(out, h)
	}
	logging.Flights("Hotels in %s: %d offers", cityCode, len(out))
	return out
}

type activitiesResponse struct {
	Data []struct {
		ID               string       `json:"id"`
		Name             string       `json:"name"`
		ShortDescription string       `json:"shortDescription"`
		Rating           flexString   `json:"rating"`
		Price            *types.Money `json:"price"`
		Pictures         []string     `json:"pictures"`
		BookingLink      string       `json:"bookingLink"`
		GeoCode          *struct {
			Latitude  flexFloat `json:"latitude"`
			Longitude flexFloat `json:"longitude"`
		} `json:"geoCode"`
	} `json:"data"`
}

// SearchActivities finds tours within 10km of a point. Without a token it
// returns demo activities.
func (c *Client) SearchActivities(ctx context.Context, lat, lon float64) []types.ActivityOffer {
	token := c.tokenOrDemo(ctx, "SearchActivities")
	if token == "" {
		return mockActivities()
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("radius", "10")

	var resp activitiesResponse
	if err := c.getJSON(ctx, token, pathActivities, q, &resp); err != nil {
		logging.FlightsWarn("Activities near %.4f,%.4f failed: %v", lat, lon, err)
		return []types.ActivityOffer{}
	}

	out := make([]types.ActivityOffer, 0, len(resp.Data))
	for _, a := range resp.Data {
		act := types.ActivityOffer{
			ID:               a.ID,
			Name:             a.Name,
			ShortDescription: a.ShortDescription,
			Rating:           string(a.Rating),
			Price:            a.Price,
			Pictures:         a.Pictures,
			BookingLink:      a.BookingLink,
		}
		if a.GeoCode != nil {
			act.GeoCode = &types.GeoCode{Latitude: float64(a.GeoCode.Latitude), Longitude: float64(a.GeoCode.Longitude)}
		}
		out = append(out, act)
	}
	return out
}

type inspirationResponse struct {
	Data []struct {
		Origin        string `json:"origin"`
		Destination   string `json:"destination"`
		DepartureDate string `json:"departureDate"`
		ReturnDate    string `json:"returnDate"`
		Price         struct {
			Total string `json:"total"`
		} `json:"price"`
		Links map[string]string `json:"links"`
	} `json:"data"`
}

// Inspiration lists the cheapest destinations from an origin. There is no demo
// data; without a token the result is empty.
func (c *Client) Inspiration(ctx context.Context, origin string) []types.InspirationFlight {
	token := c.tokenOrDemo(ctx, "Inspiration")
	if token == "" {
		return []types.InspirationFlight{}
	}

	var resp inspirationResponse
	if err := c.getJSON(ctx, token, pathInspiration, url.Values{"origin": {origin}}, &resp); err != nil {
		logging.FlightsWarn("Inspiration from %s failed: %v", origin, err)
		return []types.InspirationFlight{}
	}

	out := make([]types.InspirationFlight, 0, len(resp.Data))
	for _, item := range resp.Data {
		out = append(out, types.InspirationFlight{
			Origin:        item.Origin,
			Destination:   item.Destination,
			DepartureDate: item.DepartureDate,
			ReturnDate:    item.ReturnDate,
			Price:         types.Price{Total: item.Price.Total},
			Links:         item.Links,
		})
	}
	return out
}
