package strategy

import (
	"strings"

	"flytz/internal/types"
)

// patternTemplate is the static half of a RoutePattern. Nodes are built as
// [origin, Hub, Terminal], with Terminal defaulting to the target region.
type patternTemplate struct {
	Name      string
	Hub       string
	Terminal  string
	Type      types.PatternType
	Rationale string
	TradeOffs []string
	Risk      types.Risk
	Savings   string
}

// family is a regional template set. Chaos templates only apply at
// chaosThreshold and above.
type family struct {
	Name   string
	Match  func(region string) bool
	Core   []patternTemplate
	Backup []patternTemplate
	Chaos  []patternTemplate
}

const chaosThreshold types.ChaosLevel = 3

func exactOrContains(substr string, exact ...string) func(string) bool {
	return func(region string) bool {
		if strings.Contains(region, substr) {
			return true
		}
		for _, e := range exact {
			if region == e {
				return true
			}
		}
		return false
	}
}

var europe = family{
	Name:  "Europe",
	Match: exactOrContains("Europe", "Italy", "Portugal", "France", "UK", "Spain"),
	Core: []patternTemplate{{
		Name:      "The Heathrow/Amsterdam Pivot",
		Hub:       "LHR/AMS",
		Type:      types.PatternHubSpoke,
		Rationale: "Major alliance hubs offer frequency and reliability. Competition keeps trunk route prices stable.",
		TradeOffs: []string{"High taxes at LHR", "Potential for delays at AMS"},
		Risk:      types.RiskLow,
		Savings:   "Baseline",
	}},
	Backup: []patternTemplate{{
		Name:      "The Iberian Bridge",
		Hub:       "LIS/MAD",
		Type:      types.PatternPositioning,
		Rationale: "Southern Europe often has cheaper transatlantic taxes than the North.",
		TradeOffs: []string{"Requires separate ticket on LCC (Ryanair/Vueling)"},
		Risk:      types.RiskMedium,
		Savings:   "20%",
	}},
	Chaos: []patternTemplate{{
		Name:      "Split Ticket via Norse",
		Hub:       "OSL/LGW",
		Type:      types.PatternSplitTicket,
		Rationale: "Use low-cost long-haul carriers (Norse) to get across the pond cheaply, then self-transfer.",
		TradeOffs: []string{"Self-transfer risk", "No baggage interlining", "Strict weight limits"},
		Risk:      types.RiskHigh,
		Savings:   "40%",
	}},
}

var asia = family{
	Name:  "Asia",
	Match: exactOrContains("Asia", "Thailand", "Vietnam", "Japan", "Korea", "China", "Bali", "Singapore"),
	Core: []patternTemplate{{
		Name:      "The Pacific Rim",
		Hub:       "TYO/TPE",
		Type:      types.PatternHubSpoke,
		Rationale: "Trans-pacific routes via Japan/Taiwan are efficient and often price-matched by major carriers.",
		TradeOffs: []string{"Long total travel time", "Slightly more expensive than Chinese carriers"},
		Risk:      types.RiskLow,
		Savings:   "Baseline",
	}},
	Backup: []patternTemplate{{
		Name:      "The Middle East Pivot",
		Hub:       "IST/DOH/AUH",
		Type:      types.PatternHubSpoke,
		Rationale: "Turkish, Qatar, and Etihad often run aggressive sales to capture traffic flow to Asia.",
		TradeOffs: []string{"Long layovers common", "Geographically longer route"},
		Risk:      types.RiskLow,
		Savings:   "15%",
	}},
	Chaos: []patternTemplate{{
		Name:      "Split Ticket via Europe",
		Hub:       "ATH/IST",
		Terminal:  "SIN/BKK",
		Type:      types.PatternSplitTicket,
		Rationale: "Fly cheap to Athens or Istanbul, then switch to Scoot or a budget Asian carrier.",
		TradeOffs: []string{"Two separate long-haul tickets", "Very high fatigue risk", "Check Scoot/AirAsia directly for leg 2"},
		Risk:      types.RiskHigh,
		Savings:   "30-40%",
	}},
}

var generic = family{
	Name:  "Generic",
	Match: func(string) bool { return true },
	Core: []patternTemplate{{
		Name:      "Direct Hub Target",
		Hub:       "Primary Hub",
		Type:      types.PatternHubSpoke,
		Rationale: "Identify the largest airport in the region and fly there first.",
		TradeOffs: []string{"May require train/bus to final city"},
		Risk:      types.RiskLow,
		Savings:   "Baseline",
	}},
	Chaos: []patternTemplate{{
		Name:      "Global Positioning",
		Hub:       "Cheapest Entry Point",
		Type:      types.PatternSplitTicket,
		Rationale: `Use "Everywhere" search to find cheapest continent entry, then LCC to destination.`,
		TradeOffs: []string{"Complex booking", "Requires research"},
		Risk:      types.RiskHigh,
		Savings:   "Variable",
	}},
}

// families is checked in order; generic always matches.
var families = []family{europe, asia, generic}

// selectFamily picks the template family for a destination token.
func selectFamily(region string) family {
	for _, f := range families {
		if f.Match(region) {
			return f
		}
	}
	return generic
}
