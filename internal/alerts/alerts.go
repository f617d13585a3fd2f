// Package alerts decides when a saved price alert fires against a fresh set of
// deals and formats the notification text shown to the traveler.
package alerts

import (
	"fmt"
	"strconv"

	"flytz/internal/types"
)

// TriggerTitle is the heading of a fired alert notification.
const TriggerTitle = "Price Drop Detected!"

// Trigger describes a fired alert.
type Trigger struct {
	StrategyID string           `json:"strategyId"`
	Price      float64          `json:"price"`
	Target     float64          `json:"target"`
	Deal       types.FlightDeal `json:"deal"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Message    string           `json:"message"`
}

// Check compares the first deal against the alert target. Deals are expected in
// ascending price order, so only deals[0] is inspected.
func Check(alert types.PriceAlert, deals []types.FlightDeal) (Trigger, bool) {
	if len(deals) == 0 || alert.TargetPrice <= 0 {
		return Trigger{}, false
	}
	cheapest := deals[0]
	price := cheapest.Price.Amount()
	if price <= 0 || price > alert.TargetPrice {
		return Trigger{}, false
	}
	p, t := amount(price), amount(alert.TargetPrice)
	return Trigger{
		StrategyID: alert.StrategyID,
		Price:      price,
		Target:     alert.TargetPrice,
		Deal:       cheapest,
		Title:      TriggerTitle,
		Body:       fmt.Sprintf("Found a flight for $%s which is below your target of $%s.", p, t),
		Message:    fmt.Sprintf("Good news! We found a flight for $%s, which is below your target of $%s.", p, t),
	}, true
}

// SetMessage is the confirmation shown after an alert is stored.
func SetMessage(target float64) string {
	return fmt.Sprintf("Alert Set! We'll notify you if we find a price below $%s on your next search.", amount(target))
}

// amount prints the shortest exact form: 485 rather than 485.00, 485.5 as is.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
