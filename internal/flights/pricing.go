package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"flytz/internal/logging"
	"flytz/internal/types"
)

// ErrNotVerifiable is returned for deals without a provider offer, such as
// demo deals.
var ErrNotVerifiable = errors.New("deal is a simulation and cannot be live verified")

const (
	msgPricingFailed = "Pricing verification failed"
	msgNetworkError  = "Network error during verification"
)

type pricingRequest struct {
	Data struct {
		Type         string            `json:"type"`
		FlightOffers []json.RawMessage `json:"flightOffers"`
	} `json:"data"`
}

type pricingResponse struct {
	Data struct {
		FlightOffers []struct {
			Price struct {
				Total string `json:"total"`
			} `json:"price"`
		} `json:"flightOffers"`
	} `json:"data"`
}

type apiErrors struct {
	Errors []struct {
		Code   int    `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// ConfirmPrice re-prices a raw offer. Without credentials the offer's own
// price is confirmed. Provider rejections and network failures are reported in
// the confirmation, never as an error.
func (c *Client) ConfirmPrice(ctx context.Context, rawOffer json.RawMessage) (types.PriceConfirmation, error) {
	if len(rawOffer) == 0 {
		return types.PriceConfirmation{}, ErrNotVerifiable
	}
	var offer struct {
		Price struct {
			Total string `json:"total"`
		} `json:"price"`
	}
	if err := json.Unmarshal(rawOffer, &offer); err != nil {
		return types.PriceConfirmation{}, fmt.Errorf("malformed offer: %w", err)
	}

	token := c.tokenOrDemo(ctx, "ConfirmPrice")
	if token == "" {
		return types.PriceConfirmation{Confirmed: true, Price: offer.Price.Total}, nil
	}

	var req pricingRequest
	req.Data.Type = "flight-offers-pricing"
	req.Data.FlightOffers = []json.RawMessage{rawOffer}

	var resp pricingResponse
	err := c.postJSON(ctx, token, pathPricing, req, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			logging.FlightsWarn("Pricing rejected: %v", err)
			return types.PriceConfirmation{Confirmed: false, Error: pricingErrorDetail(se.Body)}, nil
		}
		logging.FlightsWarn("Pricing request failed: %v", err)
		return types.PriceConfirmation{Confirmed: false, Error: msgNetworkError}, nil
	}
	if len(resp.Data.FlightOffers) == 0 {
		return types.PriceConfirmation{Confirmed: false, Error: msgPricingFailed}, nil
	}

	price := resp.Data.FlightOffers[0].Price.Total
	logging.Flights("Price confirmed: %s (listed %s)", price, offer.Price.Total)
	return types.PriceConfirmation{Confirmed: true, Price: price}, nil
}

func pricingErrorDetail(body []byte) string {
	var e apiErrors
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 && e.Errors[0].Detail != "" {
		return e.Errors[0].Detail
	}
	return msgPricingFailed
}
