package strategy

import "flytz/internal/types"

const (
	budgetThreshold      = 1500
	flexibilityThreshold = 2
	hiddenCityThreshold  = types.ChaosLevel(4)
)

var domesticRegions = map[string]bool{"USA": true, "Canada": true}

// solutions runs each advice check independently; none suppresses another.
func solutions(profile types.FlightProfile, trip types.TripPlan) []types.Solution {
	var out []types.Solution

	if profile.BudgetMax < budgetThreshold {
		out = append(out, types.Solution{
			Condition:   "Budget Optimization",
			Title:       "Shoulder Season Shift",
			Description: "Prices drop 30-40% outside peak windows (June-Aug, Dec).",
			SuggestedActions: []string{
				"Shift dates to late October or February.",
				"Fly mid-week (Tuesday/Wednesday).",
				"Check departures from secondary airports (e.g., SWF instead of JFK).",
			},
		})
	}

	if trip.FlexibleDays < flexibilityThreshold {
		out = append(out, types.Solution{
			Condition:   "Low Flexibility",
			Title:       "The Fixed-Date Tax",
			Description: "Rigid dates prevent accessing the best fare buckets.",
			SuggestedActions: []string{
				"Enable 'Track Prices' on Google Flights now.",
				"Consider an overnight layover to reduce cost.",
				"Check +1/-1 day manually if the grid tool is restricted.",
			},
		})
	} else {
		out = append(out, types.Solution{
			Condition:   "High Flexibility",
			Title:       "Date Grid Arbitrage",
			Description: "You have the advantage. Use it to find 'error fares'.",
			SuggestedActions: []string{
				"Use Google Flights 'Date Grid' view.",
				"Look for green dates up to 3 weeks away.",
				"Consider extending/shortening trip by 1-2 days.",
			},
		})
	}

	if hasInternational(trip.DestinationRegions) {
		out = append(out, types.Solution{
			Condition:   "International Routing",
			Title:       "Visa & Transfer Protocols",
			Description: "Self-transfers often require entering the country to re-check bags.",
			SuggestedActions: []string{
				"Verify Transit Visa requirements for all connection points.",
				"If booking separate tickets, you MUST pass immigration to re-check bags.",
				"Ensure at least 4 hours between separate tickets.",
			},
		})
	}

	if profile.ChaosLevel.Clamp() >= hiddenCityThreshold {
		out = append(out, types.Solution{
			Condition:   "High Chaos / Hidden City",
			Title:       "Skiplagging Protocol (WARNING)",
			Description: "Booking a flight BEYOND your destination and getting off early. Requires strict adherence to rules.",
			SuggestedActions: []string{
				"NO CHECKED BAGS: They will go to the final destination.",
				"ONE-WAY ONLY: Airlines will cancel your return flight if you miss a leg.",
				"NO FREQUENT FLYER #: Do not associate your account; you risk a ban.",
				"LAST ON: If gate checked, your bag goes to the final city. Board last.",
			},
		})
	} else {
		out = append(out, types.Solution{
			Condition:   "Standard Protocol",
			Title:       "Packing Strategy",
			Description: "Budget airlines survive on bag fees. Beat them at their game.",
			SuggestedActions: []string{
				"Stick to One-Bag (40L backpack) travel.",
				"Wear your heaviest clothes on the plane.",
				"Pre-pay for carry-on if absolutely necessary (cheaper online).",
			},
		})
	}

	return out
}

func hasInternational(regions []string) bool {
	for _, r := range regions {
		if !domesticRegions[r] {
			return true
		}
	}
	return false
}
