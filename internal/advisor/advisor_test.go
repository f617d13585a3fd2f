package advisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flytz/internal/config"
	"flytz/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records calls and replays a canned response.
type fakeGenerator struct {
	mu       sync.Mutex
	calls    []fakeCall
	response string
	err      error
	block    bool
}

type fakeCall struct {
	system  string
	history []types.ChatMessage
	prompt  string
}

func (f *fakeGenerator) Generate(ctx context.Context, system string, history []types.ChatMessage, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{system: system, history: history, prompt: prompt})
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func (f *fakeGenerator) lastCall(t *testing.T) fakeCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func deal(id, total string, airlines []string, codes ...string) types.FlightDeal {
	d := types.FlightDeal{ID: id, Price: types.Price{Total: total, Currency: "USD"}, Airlines: airlines, Duration: "16h", Stops: len(codes) - 2}
	for i := 0; i+1 < len(codes); i++ {
		d.Segments = append(d.Segments, types.FlightSegment{
			Departure:   types.Endpoint{IATACode: codes[i]},
			Arrival:     types.Endpoint{IATACode: codes[i+1]},
			CarrierCode: airlines[0],
			Number:      "485",
		})
	}
	return d
}

func sampleStrategy() types.Strategy {
	return types.Strategy{
		Summary:     "Optimal routing to Japan via SEA.",
		CorePlan:    []types.RoutePattern{{Name: "Pacific Hub Connect", Nodes: []string{"JFK", "SEA", "HND"}}},
		BackupPlans: []types.RoutePattern{{Name: "Mainland China Split", Nodes: []string{"JFK", "PVG", "HND"}}},
	}
}

// =============================================================================
// OFFLINE MODE
// =============================================================================

func TestOffline_Fallbacks(t *testing.T) {
	a := New(nil)
	ctx := context.Background()
	d := deal("d1", "485.00", []string{"TK"}, "JFK", "IST", "BKK")

	assert.False(t, a.Online())

	analysis := a.RefineStrategy(ctx, sampleStrategy(), nil, types.FlightProfile{})
	assert.Equal(t, MsgRefineSkipped, analysis.Recommendation)
	assert.Equal(t, "Low", analysis.RiskAssessment)
	assert.NotNil(t, analysis.HacksDetected)
	assert.Empty(t, analysis.HacksDetected)

	assert.Equal(t, MsgChatOffline, a.Chat(ctx, nil, "hi", ChatContext{}))
	assert.Equal(t, MsgSeatsUnavailable, a.AnalyzeSeats(ctx, d, ""))
	assert.Equal(t, MsgVisaUnavailable, a.AnalyzeVisa(ctx, d, types.FlightProfile{}))
}

// =============================================================================
// REFINE STRATEGY
// =============================================================================

func TestRefineStrategy_Prompt(t *testing.T) {
	gen := &fakeGenerator{response: "  ## Market Reality Check\nGood.  "}
	a := New(gen)

	deals := []types.FlightDeal{
		deal("1", "300.00", []string{"TK", "QR"}, "JFK", "IST", "BKK"),
		deal("2", "310.00", []string{"SQ"}, "EWR", "SIN"),
		deal("3", "320.00", []string{"BA"}, "JFK", "LHR"),
		deal("4", "330.00", []string{"BA"}, "JFK", "LHR"),
		deal("5", "340.00", []string{"BA"}, "JFK", "LHR"),
		deal("6", "999.00", []string{"ZZ"}, "JFK", "LHR"),
	}
	profile := types.FlightProfile{HomeAirports: []string{"JFK"}, ChaosLevel: 4, BudgetMax: 1200}

	got := a.RefineStrategy(context.Background(), sampleStrategy(), deals, profile)
	assert.Equal(t, "## Market Reality Check\nGood.", got.Recommendation)
	assert.Empty(t, got.RiskAssessment)

	call := gen.lastCall(t)
	assert.Empty(t, call.system)
	assert.Contains(t, call.prompt, "- Adventure Level: 4/5")
	assert.Contains(t, call.prompt, "- Budget: $1200")
	assert.Contains(t, call.prompt, "- Core Plan: Pacific Hub Connect (JFK->SEA->HND)")
	assert.Contains(t, call.prompt, "- Backup Plan: Mainland China Split")
	assert.Contains(t, call.prompt, "- $300.00: JFK -> BKK (TK,QR, 1 stops)")
	assert.Contains(t, call.prompt, "- $340.00")
	assert.NotContains(t, call.prompt, "999.00", "only the five cheapest deals are sent")
	assert.Contains(t, call.prompt, `Explicitly state "BUY NOW", "WAIT", or "CHANGE ROUTE"`)
}

func TestRefineStrategy_NoDealsNoPlans(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	New(gen).RefineStrategy(context.Background(), types.Strategy{}, nil, types.FlightProfile{})

	call := gen.lastCall(t)
	assert.Contains(t, call.prompt, "No direct matches found. Assume standard seasonal pricing.")
	assert.Contains(t, call.prompt, "- Core Plan: Standard\n")
	assert.Contains(t, call.prompt, "- Backup Plan: None")
}

func TestRefineStrategy_EmptyAndError(t *testing.T) {
	ctx := context.Background()

	empty := New(&fakeGenerator{response: "   "}).RefineStrategy(ctx, sampleStrategy(), nil, types.FlightProfile{})
	assert.Equal(t, MsgRefineEmpty, empty.Recommendation)

	failed := New(&fakeGenerator{err: errors.New("quota")}).RefineStrategy(ctx, sampleStrategy(), nil, types.FlightProfile{})
	assert.Equal(t, MsgRefineOffline, failed.Recommendation)
	assert.Equal(t, "Unknown", failed.RiskAssessment)
}

func TestRefineForCountry(t *testing.T) {
	gen := &fakeGenerator{response: "## Market Reality Check\nThai baht is cheap."}
	a := New(gen)

	s := sampleStrategy()
	deals := []types.FlightDeal{deal("1", "300.00", []string{"TK"}, "JFK", "IST", "BKK")}
	got := a.RefineForCountry(context.Background(), s, deals, types.FlightProfile{BudgetMax: 900}, "Thailand")
	assert.Equal(t, "## Market Reality Check\nThai baht is cheap.", got.Recommendation)

	call := gen.lastCall(t)
	assert.Contains(t, call.prompt, "- Summary: FOCUS: Provide specific travel intelligence, currency, safety, and flight hacking tips exclusively for THAILAND. Ignore other regions. Optimal routing to Japan via SEA.")
	assert.Contains(t, call.prompt, "- $300.00: JFK -> BKK")
	assert.Equal(t, "Optimal routing to Japan via SEA.", s.Summary, "caller's strategy is left untouched")
}

func TestRefineForCountry_Offline(t *testing.T) {
	got := New(nil).RefineForCountry(context.Background(), sampleStrategy(), nil, types.FlightProfile{}, "Japan")
	assert.Equal(t, MsgRefineSkipped, got.Recommendation)
}

func TestGenerate_Timeout(t *testing.T) {
	gen := &fakeGenerator{block: true}
	a := New(gen, WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := a.Chat(context.Background(), nil, "hello?", ChatContext{})
	assert.Equal(t, MsgChatError, got)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// =============================================================================
// CHAT
// =============================================================================

func TestChat_SystemPromptAndHistory(t *testing.T) {
	gen := &fakeGenerator{response: "Yes, you need a transit visa."}
	a := New(gen)

	history := []types.ChatMessage{
		{Role: types.RoleModel, Text: "Hello! How can I help?"},
		{Role: types.RoleUser, Text: "earlier question"},
	}
	trip := types.TripPlan{DestinationRegions: []string{"Japan"}}
	cc := ChatContext{
		Strategy: sampleStrategy(),
		Profile:  types.FlightProfile{HomeAirports: []string{"JFK"}},
		Trip:     &trip,
		Deals: []types.FlightDeal{
			deal("1", "300.00", []string{"TK"}, "JFK", "IST", "BKK"),
			deal("2", "310.00", []string{"SQ"}, "EWR", "SIN"),
			deal("3", "320.00", []string{"BA"}, "JFK", "LHR"),
			deal("4", "330.00", []string{"AF"}, "JFK", "CDG"),
		},
	}

	got := a.Chat(context.Background(), history, "Do I need a visa?", cc)
	assert.Equal(t, "Yes, you need a transit visa.", got)

	call := gen.lastCall(t)
	assert.Equal(t, "Do I need a visa?", call.prompt)
	assert.Equal(t, history, call.history)
	assert.Contains(t, call.system, "CONTEXT: User is planning JFK -> Japan.")
	assert.Contains(t, call.system, "STRATEGY: Optimal routing to Japan via SEA..")
	assert.Contains(t, call.system, "LIVE DEALS: TK $300.00, SQ $310.00, BA $320.00.")
	assert.NotContains(t, call.system, "AF")
}

func TestChat_NoTripAndFailures(t *testing.T) {
	gen := &fakeGenerator{}
	a := New(gen)

	assert.Equal(t, MsgChatEmpty, a.Chat(context.Background(), nil, "hi", ChatContext{}))
	assert.Contains(t, gen.lastCall(t).system, "-> Everywhere.")

	gen.err = errors.New("boom")
	assert.Equal(t, MsgChatError, a.Chat(context.Background(), nil, "hi", ChatContext{}))
}

// =============================================================================
// SEATS AND VISA
// =============================================================================

func TestAnalyzeSeats(t *testing.T) {
	gen := &fakeGenerator{response: "3-4-3 layout"}
	a := New(gen)
	d := deal("1", "300.00", []string{"TK"}, "JFK", "IST", "BKK")
	d.Segments[0].AircraftCode = "77W"

	assert.Equal(t, "3-4-3 layout", a.AnalyzeSeats(context.Background(), d, ""))
	call := gen.lastCall(t)
	assert.Contains(t, call.prompt, "TK flight 485 (77W) flying JFK to IST (16h)")
	assert.Contains(t, call.prompt, "of average height")

	d.Segments[0].AircraftCode = ""
	a.AnalyzeSeats(context.Background(), d, "tall")
	call = gen.lastCall(t)
	assert.Contains(t, call.prompt, "(Unknown Aircraft)")
	assert.Contains(t, call.prompt, "of tall height")

	assert.Equal(t, MsgSeatsEmpty, a.AnalyzeSeats(context.Background(), types.FlightDeal{}, ""))

	gen.err = errors.New("boom")
	assert.Equal(t, MsgSeatsError, a.AnalyzeSeats(context.Background(), d, ""))
}

func TestAnalyzeVisa(t *testing.T) {
	gen := &fakeGenerator{response: "Risk Level: Medium"}
	a := New(gen)
	ctx := context.Background()

	direct := deal("1", "550.00", []string{"BA"}, "JFK", "LHR")
	assert.Equal(t, MsgVisaDirect, a.AnalyzeVisa(ctx, direct, types.FlightProfile{}))
	assert.Zero(t, gen.callCount(), "direct flights never reach the model")

	multi := deal("2", "485.00", []string{"TK", "QR"}, "JFK", "IST", "DOH", "BKK")
	assert.Equal(t, "Risk Level: Medium", a.AnalyzeVisa(ctx, multi, types.FlightProfile{}))
	call := gen.lastCall(t)
	assert.Contains(t, call.prompt, "Origin: JFK")
	assert.Contains(t, call.prompt, "Destination: BKK.")
	assert.Contains(t, call.prompt, "Layovers: IST, DOH.")
	assert.Contains(t, call.prompt, "Airlines involved: TK, QR.")
	assert.Contains(t, call.prompt, "re-check bags at the layover airports (IST, DOH)")

	gen.response = ""
	assert.Equal(t, MsgVisaEmpty, a.AnalyzeVisa(ctx, multi, types.FlightProfile{}))

	gen.err = errors.New("boom")
	assert.Equal(t, MsgVisaError, a.AnalyzeVisa(ctx, multi, types.FlightProfile{}))
}

func TestFromConfig_NoKeyIsOffline(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Timeout = "5s"
	a := FromConfig(context.Background(), cfg)
	assert.False(t, a.Online())
	assert.Equal(t, 5*time.Second, a.timeout)
}
