package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"flytz/internal/types"
)

const (
	refineDealLimit = 5
	chatDealLimit   = 3
)

func formatBudget(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dealLine renders one deal for the report prompt.
func dealLine(d types.FlightDeal) string {
	return fmt.Sprintf("- $%s: %s -> %s (%s, %d stops)",
		d.Price.Total, d.Origin(), d.Destination(), strings.Join(d.Airlines, ","), d.Stops)
}

func refinePrompt(s types.Strategy, deals []types.FlightDeal, p types.FlightProfile) string {
	var lines []string
	for i, d := range deals {
		if i == refineDealLimit {
			break
		}
		lines = append(lines, dealLine(d))
	}
	market := strings.Join(lines, "\n")
	if market == "" {
		market = "No direct matches found. Assume standard seasonal pricing."
	}

	core := "Standard"
	if c, ok := s.Core(); ok {
		core = fmt.Sprintf("%s (%s)", c.Name, strings.Join(c.Nodes, "->"))
	}
	backup := "None"
	if b, ok := s.Backup(); ok {
		backup = b.Name
	}

	var b strings.Builder
	b.WriteString("You are Flytz AI, an elite flight hacking strategist.\n\n")
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Adventure Level: %d/5 (1=Direct only, 5=Hidden city/Skiplagging/Long layovers)\n", p.ChaosLevel.Clamp())
	fmt.Fprintf(&b, "- Budget: $%s\n\n", formatBudget(p.BudgetMax))
	b.WriteString("Current Strategy Generated:\n")
	fmt.Fprintf(&b, "- Core Plan: %s\n", core)
	fmt.Fprintf(&b, "- Backup Plan: %s\n", backup)
	fmt.Fprintf(&b, "- Summary: %s\n\n", s.Summary)
	b.WriteString("Live Market Data (Real-time prices found):\n")
	b.WriteString(market)
	b.WriteString("\n\n")
	b.WriteString(`Task: Generate a detailed "Strategic Analysis Report" in Markdown format.

Include these sections:
1. **Market Reality Check**: Are the live prices good compared to historical averages for this route? Are they under/over the user's budget?
2. **Destination Intel**:
   - **Currency**: [Name] (Exchange Rate approx 1 USD = X).
   - **Transit**: Walkability score and public transport reliability.
   - **Safety**: Specific safety concerns for tourists.
3. **Risk Assessment**: Analyze the specific risks of the cheapest options found (e.g., "50min layover in LHR is risky", "Self-transfer requires Visa check").
4. **Optimization Tactics**: Give 2 specific actionable tips to lower the price further (e.g., "Shift to Tuesday departure", "Check separate tickets via [Specific Hub]").
5. **Insider Tips**: Provide 2-3 unique insights or "hacks" for this specific route (e.g., "Lounge access at [Airport]", "Best seat on [Airline]", "Hidden transfer path").
6. **Final Verdict**: Explicitly state "BUY NOW", "WAIT", or "CHANGE ROUTE".

Keep the tone professional, insightful, and direct. Do not be generic.
`)
	return b.String()
}

func chatSystemPrompt(cc ChatContext) string {
	var snapshot []string
	for i, d := range cc.Deals {
		if i == chatDealLimit {
			break
		}
		airline := ""
		if len(d.Airlines) > 0 {
			airline = d.Airlines[0]
		}
		snapshot = append(snapshot, fmt.Sprintf("%s $%s", airline, d.Price.Total))
	}

	origin := cc.Profile.PrimaryOrigin()
	dest := "Everywhere"
	if cc.Trip != nil && cc.Trip.PrimaryDestination() != "" {
		dest = cc.Trip.PrimaryDestination()
	}

	var b strings.Builder
	b.WriteString("You are the Flytz Travel Assistant.\n")
	fmt.Fprintf(&b, "CONTEXT: User is planning %s -> %s.\n", origin, dest)
	fmt.Fprintf(&b, "STRATEGY: %s.\n", cc.Strategy.Summary)
	fmt.Fprintf(&b, "LIVE DEALS: %s.\n\n", strings.Join(snapshot, ", "))
	b.WriteString("INSTRUCTIONS: Answer specific logistical questions about airports, visas, transfer times, and risks. Be concise, helpful, and professional.")
	return b.String()
}

func seatPrompt(d types.FlightDeal, height string) string {
	first := d.Segments[0]
	aircraft := first.AircraftCode
	if aircraft == "" {
		aircraft = "Unknown Aircraft"
	}
	airline := first.CarrierCode
	if len(d.Airlines) > 0 {
		airline = d.Airlines[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the likely seat configuration for %s flight %s (%s) flying %s to %s (%s).\n",
		airline, first.Number, aircraft, first.Departure.IATACode, first.Arrival.IATACode, d.Duration)
	fmt.Fprintf(&b, "The traveler is of %s height.\n\n", height)
	b.WriteString(`Provide a brief "Seat Map Recon" including:
1. **Cabin Layout**: (e.g., 3-3-3 or 3-4-3).
2. **Best Economy Seats**: Specific rows or seats with extra legroom (e.g., Exit rows, Bulkhead) that might be free.
3. **Seats to Avoid**: Rows with no recline or near lavatories.
4. **"Poor Man's Business Class"**: Likelihood of empty rows based on route/airline typical load factors.

Keep it concise and tactical.
`)
	return b.String()
}

func visaPrompt(d types.FlightDeal, p types.FlightProfile) string {
	layovers := strings.Join(d.Layovers(), ", ")
	origin := d.Origin()
	if origin == "" {
		origin = p.PrimaryOrigin()
	}

	var b strings.Builder
	b.WriteString("Act as a travel immigration expert.\n")
	b.WriteString("Analyze this itinerary:\n")
	fmt.Fprintf(&b, "Origin: %s (Assume traveler has passport from this region/country).\n", origin)
	fmt.Fprintf(&b, "Destination: %s.\n", d.Destination())
	fmt.Fprintf(&b, "Layovers: %s.\n", layovers)
	fmt.Fprintf(&b, "Airlines involved: %s.\n\n", strings.Join(d.Airlines, ", "))
	b.WriteString("Task:\n")
	b.WriteString(`1. Identify if this looks like a "Self-Transfer" (changing airlines that likely don't interline bags).` + "\n")
	fmt.Fprintf(&b, "2. **Visa Warning**: Determine if the traveler likely needs a Transit Visa or full entry visa to re-check bags at the layover airports (%s).\n", layovers)
	b.WriteString("3. Provide a clear \"Risk Level\" (High/Medium/Low) for immigration issues on this specific route.\n\n")
	b.WriteString("Keep it short and warning-focused. Use normal, professional language.\n")
	return b.String()
}
