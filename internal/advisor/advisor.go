// Package advisor produces the narrative layer on top of a strategy: the
// analysis report, the trip assistant chat, seat map recon and visa checks.
//
// Every call degrades to a fixed message when no generator is configured or
// generation fails; errors are logged and never returned.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flytz/internal/logging"
	"flytz/internal/types"
)

// Generator produces model text for a system instruction, prior conversation
// and a new prompt.
type Generator interface {
	Generate(ctx context.Context, system string, history []types.ChatMessage, prompt string) (string, error)
}

// Fixed responses used when the model is unavailable or returns nothing.
const (
	MsgRefineSkipped    = "AI Refinement Skipped: No API Key found in settings. (Simulated Analysis): based on current pricing, the 'Core Plan' appears most viable. Consider shifting dates by +/- 1 day."
	MsgRefineEmpty      = "AI Analysis unavailable."
	MsgRefineOffline    = "System offline. AI Refinement temporarily unavailable. Proceed with manual strategy."
	MsgChatOffline      = "Assistant Offline. Please configure API Keys in settings."
	MsgChatEmpty        = "No data received."
	MsgChatError        = "Connection Error. Retrying..."
	MsgSeatsUnavailable = "AI Seat analysis unavailable without API Key."
	MsgSeatsEmpty       = "No seat data found."
	MsgSeatsError       = "Unable to retrieve seat map data."
	MsgVisaUnavailable  = "Visa analysis unavailable without API Key."
	MsgVisaDirect       = "Direct flight. Standard entry requirements for destination apply."
	MsgVisaEmpty        = "Unable to analyze visa requirements."
	MsgVisaError        = "Visa check service offline."
)

// SuggestedQuestions are canned chat starters grouped by topic.
var SuggestedQuestions = []struct {
	Category string
	Question string
}{
	{"Logistics", "Do I need a transit visa for these layovers?"},
	{"Logistics", "Is the connection time sufficient for this route?"},
	{"Risk", "What are the risks of self-transfer here?"},
	{"Baggage", "Can I check bags on this split-ticket itinerary?"},
	{"Strategy", "Explain the 'Skiplagging' risk in detail."},
	{"Deals", "What is the absolute cheapest route found?"},
	{"Comfort", "Are there overnight layovers I should worry about?"},
}

// ChatContext is the trip state the assistant answers about.
type ChatContext struct {
	Strategy types.Strategy
	Deals    []types.FlightDeal
	Profile  types.FlightProfile
	Trip     *types.TripPlan
}

// Advisor wraps an optional Generator.
type Advisor struct {
	gen     Generator
	timeout time.Duration
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) { a.timeout = d }
}

// New creates an Advisor. A nil generator puts it in offline mode.
func New(gen Generator, opts ...Option) *Advisor {
	a := &Advisor{gen: gen, timeout: 90 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Online reports whether a generator is configured.
func (a *Advisor) Online() bool {
	return a != nil && a.gen != nil
}

func (a *Advisor) generate(ctx context.Context, op, system string, history []types.ChatMessage, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := a.gen.Generate(ctx, system, history, prompt)
	if err != nil {
		logging.AdvisorWarn("%s failed after %v: %v", op, time.Since(start), err)
		return "", err
	}
	logging.Advisor("%s: %d chars in %v", op, len(text), time.Since(start))
	return strings.TrimSpace(text), nil
}

// RefineStrategy asks the model for a Markdown strategic analysis report of the
// strategy and the five cheapest deals.
func (a *Advisor) RefineStrategy(ctx context.Context, strategy types.Strategy, deals []types.FlightDeal, profile types.FlightProfile) types.AIAnalysis {
	if !a.Online() {
		return types.AIAnalysis{
			Recommendation: MsgRefineSkipped,
			HacksDetected:  []string{},
			RiskAssessment: "Low",
		}
	}

	text, err := a.generate(ctx, "RefineStrategy", "", nil, refinePrompt(strategy, deals, profile))
	if err != nil {
		return types.AIAnalysis{
			Recommendation: MsgRefineOffline,
			HacksDetected:  []string{},
			RiskAssessment: "Unknown",
		}
	}
	if text == "" {
		text = MsgRefineEmpty
	}
	return types.AIAnalysis{Recommendation: text, HacksDetected: []string{}}
}

// CountryFocus prefixes a strategy summary so the analysis covers one
// destination country only.
func CountryFocus(country, summary string) string {
	return fmt.Sprintf("FOCUS: Provide specific travel intelligence, currency, safety, and flight hacking tips exclusively for %s. Ignore other regions. %s",
		strings.ToUpper(strings.TrimSpace(country)), summary)
}

// RefineForCountry runs RefineStrategy focused on one destination country.
// Deals should already be narrowed to that country.
func (a *Advisor) RefineForCountry(ctx context.Context, strategy types.Strategy, deals []types.FlightDeal, profile types.FlightProfile, country string) types.AIAnalysis {
	strategy.Summary = CountryFocus(country, strategy.Summary)
	return a.RefineStrategy(ctx, strategy, deals, profile)
}

// Chat answers one assistant message. History holds the prior turns, not
// including message.
func (a *Advisor) Chat(ctx context.Context, history []types.ChatMessage, message string, cc ChatContext) string {
	if !a.Online() {
		return MsgChatOffline
	}
	text, err := a.generate(ctx, "Chat", chatSystemPrompt(cc), history, message)
	if err != nil {
		return MsgChatError
	}
	if text == "" {
		return MsgChatEmpty
	}
	return text
}

// AnalyzeSeats describes the likely cabin layout of the deal's first segment.
// An empty height means "average".
func (a *Advisor) AnalyzeSeats(ctx context.Context, deal types.FlightDeal, height string) string {
	if !a.Online() {
		return MsgSeatsUnavailable
	}
	if len(deal.Segments) == 0 {
		return MsgSeatsEmpty
	}
	if height == "" {
		height = "average"
	}
	text, err := a.generate(ctx, "AnalyzeSeats", "", nil, seatPrompt(deal, height))
	if err != nil {
		return MsgSeatsError
	}
	if text == "" {
		return MsgSeatsEmpty
	}
	return text
}

// AnalyzeVisa flags transit visa and self-transfer risk at the deal's
// layovers. Direct flights are answered without calling the model.
func (a *Advisor) AnalyzeVisa(ctx context.Context, deal types.FlightDeal, profile types.FlightProfile) string {
	if !a.Online() {
		return MsgVisaUnavailable
	}
	if len(deal.Layovers()) == 0 {
		return MsgVisaDirect
	}
	text, err := a.generate(ctx, "AnalyzeVisa", "", nil, visaPrompt(deal, profile))
	if err != nil {
		return MsgVisaError
	}
	if text == "" {
		return MsgVisaEmpty
	}
	return text
}
