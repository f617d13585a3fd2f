// Package strategy expands a traveller profile and trip into a routing Strategy.
//
// Generation is a pure template expansion: the first destination token selects
// a regional family (Europe, Asia or generic), each family contributes core,
// backup and (at chaos level 3+) high-risk patterns, and independent threshold
// checks add advice cards. There is no error path; missing inputs fall back to
// defaults.
package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"flytz/internal/logging"
	"flytz/internal/types"

	"github.com/google/uuid"
)

const (
	defaultOrigin = "NYC"
	defaultRegion = "Everywhere"
)

// Engine generates strategies. The zero value is not usable; use NewEngine.
type Engine struct {
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDSource replaces the random UUID source, mainly for tests.
func WithIDSource(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Generate runs the default engine.
func Generate(profile types.FlightProfile, trip types.TripPlan) types.Strategy {
	return defaultEngine.Generate(profile, trip)
}

// Generate builds a Strategy for the given profile and trip.
func (e *Engine) Generate(profile types.FlightProfile, trip types.TripPlan) types.Strategy {
	origin := profile.PrimaryOrigin()
	if origin == "" {
		origin = defaultOrigin
	}
	region := trip.PrimaryDestination()
	if region == "" {
		region = defaultRegion
	}
	chaos := profile.ChaosLevel.Clamp()

	fam := selectFamily(region)
	core := e.expand(fam.Core, origin, region, trip.StartDate)
	backup := e.expand(fam.Backup, origin, region, trip.StartDate)
	chaosPlans := []types.RoutePattern{}
	if chaos >= chaosThreshold {
		chaosPlans = e.expand(fam.Chaos, origin, region, trip.StartDate)
	}

	logging.StrategyDebug("family=%s origin=%s region=%s chaos=%d core=%d backup=%d chaos_plans=%d",
		fam.Name, origin, region, chaos, len(core), len(backup), len(chaosPlans))

	s := types.Strategy{
		ID:          e.newID(),
		CorePlan:    core,
		BackupPlans: backup,
		ChaosPlans:  chaosPlans,
		Solutions:   solutions(profile, trip),
		SearchLinks: searchLinks(origin, region, trip.StartDate),
	}
	s.Summary = summary(s)
	s.Steps = steps(s)
	s.Prompts = prompts(s, profile, trip, origin, region)

	logging.Strategy("Generated strategy %s for %s -> %s (%s)", s.ID, origin, region, fam.Name)
	return s
}

func (e *Engine) expand(templates []patternTemplate, origin, region, date string) []types.RoutePattern {
	out := make([]types.RoutePattern, 0, len(templates))
	for _, t := range templates {
		out = append(out, e.pattern(t, origin, region, date))
	}
	return out
}

// pattern instantiates one template. dest is always the target region, even
// when the template ends on a different terminal node.
func (e *Engine) pattern(t patternTemplate, origin, dest, date string) types.RoutePattern {
	terminal := t.Terminal
	if terminal == "" {
		terminal = dest
	}
	nodes := []string{origin, t.Hub, terminal}
	inner := nodes[1 : len(nodes)-1]

	innerCodes := make([]string, len(inner))
	for i, n := range inner {
		innerCodes[i] = firstCode(n)
	}

	p := types.RoutePattern{
		ID:               e.newID(),
		Name:             t.Name,
		Nodes:            nodes,
		Type:             t.Type,
		Description:      "Routing via " + strings.Join(inner, " & "),
		Rationale:        t.Rationale,
		TradeOffs:        append([]string(nil), t.TradeOffs...),
		Risk:             t.Risk,
		EstimatedSavings: t.Savings,
		StepLinks:        []types.BookingStepLink{},
		ActionPlans: []types.ActionPlan{
			{
				Tool: types.ProviderGoogleFlights,
				Instruction: fmt.Sprintf(`Select "Multi-city". Leg 1: %s to %s. Leg 2: %s to %s. Check pricing separately then combined.`,
					nodes[0], nodes[1], nodes[1], nodes[len(nodes)-1]),
			},
			{
				Tool:        types.ProviderITAMatrix,
				Instruction: fmt.Sprintf("Advanced routing code: %s :: %s %s", origin, strings.Join(innerCodes, " "), dest),
			},
		},
	}
	if t.Type.MultiLeg() {
		p.StepLinks = stepLinks(origin, nodes[1], dest, date)
	}
	return p
}

func nameOr(ps []types.RoutePattern, fallback string) string {
	if len(ps) == 0 {
		return fallback
	}
	return ps[0].Name
}

// hubOr returns the first connection node of the leading pattern.
func hubOr(ps []types.RoutePattern, fallback string) string {
	if len(ps) == 0 {
		return fallback
	}
	return ps[0].Hub()
}

func pathOr(ps []types.RoutePattern, fallback string) string {
	if len(ps) == 0 {
		return fallback
	}
	return strings.Join(ps[0].Nodes, " -> ")
}

func summary(s types.Strategy) string {
	advanced := "Advanced options suppressed based on your preferences."
	if len(s.ChaosPlans) > 0 {
		advanced = "Advanced savings options detected."
	}
	return fmt.Sprintf("The recommended approach is the %s route. Alternatives are available via %s routing. %s",
		nameOr(s.CorePlan, "Standard"), nameOr(s.BackupPlans, "Alternative"), advanced)
}

func steps(s types.Strategy) []types.Step {
	out := []types.Step{
		{
			Title:       "Analyze Base Fares",
			Description: fmt.Sprintf("Check the Core Plan: %s. Note the price.", pathOr(s.CorePlan, "n/a")),
			Difficulty:  types.DifficultyEasy,
		},
		{
			Title:       "Check Contingencies",
			Description: fmt.Sprintf("Compare against Backup Plan: %s. Is the saving >$150?", pathOr(s.BackupPlans, "n/a")),
			Difficulty:  types.DifficultyMedium,
		},
	}
	if len(s.ChaosPlans) > 0 {
		out = append(out, types.Step{
			Title:       "Try Advanced Option",
			Description: fmt.Sprintf("If budget is critical, attempt %s. Ensure 4h+ buffer between tickets.", s.ChaosPlans[0].Name),
			Difficulty:  types.DifficultyHard,
		})
	}
	return out
}

func prompts(s types.Strategy, profile types.FlightProfile, trip types.TripPlan, origin, region string) []types.Prompt {
	coreHub := hubOr(s.CorePlan, "n/a")
	backupHub := hubOr(s.BackupPlans, "n/a")

	var codes []string
	for _, p := range append(append([]types.RoutePattern(nil), s.CorePlan...), s.BackupPlans...) {
		codes = append(codes, firstCode(p.Hub()))
	}

	return []types.Prompt{
		{
			Tool:        types.ProviderGoogleFlights,
			Description: "Precise multi-city construction",
			PromptText: fmt.Sprintf(`Search Type: Multi-city / Round Trip
1. Origin: %s
2. Connection: %s (or %s)
3. Destination: %s
Dates: %s (+/- %d days)
Filters:
- Mode: Flights only
- Price Graph: ON`, origin, coreHub, backupHub, region, trip.StartDate, trip.FlexibleDays),
		},
		{
			Tool:        types.ProviderITAMatrix,
			Description: "Advanced routing language",
			PromptText: fmt.Sprintf(`Origin: %s :: %s
Destination: %s
Date: %s
Cabins: Cheapest Available
Stops: Up to 2`, origin, strings.Join(codes, " "), strings.ToUpper(prefix(region, 3)), trip.StartDate),
		},
		{
			Tool:        types.ProviderAIAssistant,
			Description: "Deal hunting query",
			PromptText: fmt.Sprintf(`I need to get from %s to %s around %s.
Budget: $%s.
Check for:
1. Error fares on %s routes.
2. Positioning flights via %s.
3. Open-jaw tickets returning from a nearby city.`, origin, region, trip.StartDate, formatBudget(profile.BudgetMax), coreHub, backupHub),
		},
	}
}

// formatBudget prints the budget without trailing zeros (1200, 999.5).
func formatBudget(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
