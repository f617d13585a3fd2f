package types

import (
	"encoding/json"
	"strconv"
)

// DealSource records where a FlightDeal came from.
type DealSource string

const (
	SourceAmadeus DealSource = "Amadeus"
	SourceMock    DealSource = "Mock"
)

// Endpoint is one end of a flight segment.
type Endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
	Terminal string `json:"terminal,omitempty"`
}

// FlightSegment is a single operated flight.
type FlightSegment struct {
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
	CarrierCode  string   `json:"carrierCode"`
	Number       string   `json:"number"`
	Duration     string   `json:"duration"`
	Cabin        string   `json:"cabin,omitempty"`
	AircraftCode string   `json:"aircraftCode,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
}

// Price is a fare as reported by the provider. Amounts stay strings to avoid
// rounding the provider's decimal representation.
type Price struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
	Base     string `json:"base,omitempty"`
	Fees     string `json:"fees,omitempty"`
}

// Amount parses Total, returning 0 for unparsable values.
func (p Price) Amount() float64 {
	v, err := strconv.ParseFloat(p.Total, 64)
	if err != nil {
		return 0
	}
	return v
}

// BaggageInfo summarises checked bag allowance.
type BaggageInfo struct {
	IncludedCheckedBags int     `json:"includedCheckedBags"`
	EstimatedBagFee     float64 `json:"estimatedBagFee,omitempty"`
	Unit                string  `json:"unit,omitempty"`
}

// FlightDeal is a priced itinerary. Immutable once fetched.
type FlightDeal struct {
	ID               string          `json:"id"`
	Source           DealSource      `json:"source"`
	RawOffer         json.RawMessage `json:"rawOffer,omitempty"`
	Price            Price           `json:"price"`
	Airlines         []string        `json:"airlines"`
	Segments         []FlightSegment `json:"segments"`
	DeepLink         string          `json:"deepLink,omitempty"`
	Duration         string          `json:"duration"`
	Stops            int             `json:"stops"`
	FareClass        string          `json:"fareClass,omitempty"`
	LayoverDurations []string        `json:"layoverDurations,omitempty"`
	BaggageInfo      *BaggageInfo    `json:"baggageInfo,omitempty"`
}

// Origin returns the first departure airport.
func (d FlightDeal) Origin() string {
	if len(d.Segments) == 0 {
		return ""
	}
	return d.Segments[0].Departure.IATACode
}

// Destination returns the final arrival airport.
func (d FlightDeal) Destination() string {
	if len(d.Segments) == 0 {
		return ""
	}
	return d.Segments[len(d.Segments)-1].Arrival.IATACode
}

// Layovers returns the connection airports in travel order.
func (d FlightDeal) Layovers() []string {
	if len(d.Segments) < 2 {
		return nil
	}
	out := make([]string, 0, len(d.Segments)-1)
	for _, s := range d.Segments[:len(d.Segments)-1] {
		out = append(out, s.Arrival.IATACode)
	}
	return out
}

// PriceConfirmation is the outcome of re-pricing an offer.
type PriceConfirmation struct {
	Confirmed bool   `json:"confirmed"`
	Price     string `json:"price,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HotelOffer is a priced hotel stay.
type HotelOffer struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	HotelID     string       `json:"hotelId"`
	CityCode    string       `json:"cityCode"`
	Rating      float64      `json:"rating,omitempty"`
	Latitude    float64      `json:"latitude,omitempty"`
	Longitude   float64      `json:"longitude,omitempty"`
	Price       Price        `json:"price"`
	Description string       `json:"description,omitempty"`
	Amenities   []string     `json:"amenities,omitempty"`
	Media       []HotelMedia `json:"media,omitempty"`
}

// HotelMedia is an image attached to a hotel.
type HotelMedia struct {
	URI      string `json:"uri"`
	Category string `json:"category,omitempty"`
}

// Money is an amount with its currency code.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// GeoCode is a latitude/longitude pair.
type GeoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ActivityOffer is a bookable tour or attraction.
type ActivityOffer struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	Rating           string   `json:"rating,omitempty"`
	Price            *Money   `json:"price,omitempty"`
	Pictures         []string `json:"pictures,omitempty"`
	BookingLink      string   `json:"bookingLink,omitempty"`
	GeoCode          *GeoCode `json:"geoCode,omitempty"`
}

// InspirationFlight is a cheapest-destination suggestion from an origin.
type InspirationFlight struct {
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	DepartureDate string            `json:"departureDate"`
	ReturnDate    string            `json:"returnDate,omitempty"`
	Price         Price             `json:"price"`
	Links         map[string]string `json:"links,omitempty"`
}

// LocationType classifies a location option.
type LocationType string

const (
	LocationRegion  LocationType = "Region"
	LocationCountry LocationType = "Country"
	LocationCity    LocationType = "City"
	LocationAirport LocationType = "Airport"
)

// LocationOption is an autocomplete entry for origins and destinations.
type LocationOption struct {
	Label    string       `json:"label"`
	Value    string       `json:"value"`
	Type     LocationType `json:"type"`
	Keywords []string     `json:"keywords,omitempty"`
}
