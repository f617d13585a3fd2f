package types

// PatternType tags the routing template a RoutePattern was built from.
type PatternType string

const (
	PatternDirect      PatternType = "Direct"
	PatternPositioning PatternType = "Positioning"
	PatternSplitTicket PatternType = "Split-Ticket"
	PatternHubSpoke    PatternType = "Hub-Spoke"
	PatternHiddenCity  PatternType = "Hidden-City"
	PatternLoop        PatternType = "Loop"
)

// MultiLeg reports whether the pattern is booked as separate legs.
func (p PatternType) MultiLeg() bool {
	return p == PatternSplitTicket || p == PatternPositioning
}

// Risk is the coarse risk tier of a routing pattern.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Difficulty grades a legacy strategy step.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Booking and search providers referenced by generated links.
const (
	ProviderGoogleFlights = "Google Flights"
	ProviderGoogleExplore = "Google Explore"
	ProviderSkyscanner    = "Skyscanner"
	ProviderKayak         = "Kayak"
	ProviderKiwi          = "Kiwi"
	ProviderDirectAirline = "Direct Airline"
	ProviderITAMatrix     = "ITA Matrix"
	ProviderAIAssistant   = "Google Gemini / ChatGPT"
)

// ActionPlan is a tool-specific instruction for executing a pattern.
type ActionPlan struct {
	Tool        string `json:"tool"`
	Instruction string `json:"instruction"`
}

// BookingStepLink deep-links one leg of a multi-leg pattern.
type BookingStepLink struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// RoutePattern is one instance of a routing template. Created once per run and
// never mutated afterwards.
type RoutePattern struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Nodes            []string          `json:"nodes"`
	Type             PatternType       `json:"type"`
	Description      string            `json:"description"`
	Rationale        string            `json:"rationale"`
	TradeOffs        []string          `json:"tradeOffs"`
	ActionPlans      []ActionPlan      `json:"actionPlans"`
	StepLinks        []BookingStepLink `json:"stepLinks,omitempty"`
	Risk             Risk              `json:"risk"`
	EstimatedSavings string            `json:"estimatedSavings"`

	Seasonality       []string `json:"seasonality,omitempty"`
	MinConnectionTime string   `json:"minConnectionTime,omitempty"`
	BookingWindow     string   `json:"bookingWindow,omitempty"`
}

// Hub returns the first connection node, or "" for patterns without one.
func (r RoutePattern) Hub() string {
	if len(r.Nodes) < 2 {
		return ""
	}
	return r.Nodes[1]
}

// Solution is a condition-triggered advice card.
type Solution struct {
	Condition        string   `json:"condition"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	SuggestedActions []string `json:"suggestedActions"`
}

// SearchLink is a pre-filled search on an external metasearch site.
type SearchLink struct {
	Provider string `json:"provider"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	Primary  bool   `json:"primary"`
}

// Prompt is copy-paste text for a search tool or an AI assistant.
type Prompt struct {
	Tool        string `json:"tool"`
	Description string `json:"description"`
	PromptText  string `json:"promptText"`
}

// Step is a legacy high-level instruction.
type Step struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Strategy is the aggregate produced by one engine run. Re-running replaces it
// wholesale.
type Strategy struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	CorePlan    []RoutePattern `json:"corePlan"`
	BackupPlans []RoutePattern `json:"backupPlans"`
	ChaosPlans  []RoutePattern `json:"chaosPlans"`
	Solutions   []Solution     `json:"solutions"`
	SearchLinks []SearchLink   `json:"searchLinks"`
	Prompts     []Prompt       `json:"prompts"`
	Steps       []Step         `json:"steps"`
}

// Core returns the leading core pattern, if any.
func (s Strategy) Core() (RoutePattern, bool) {
	if len(s.CorePlan) == 0 {
		return RoutePattern{}, false
	}
	return s.CorePlan[0], true
}

// Backup returns the leading backup pattern, if any.
func (s Strategy) Backup() (RoutePattern, bool) {
	if len(s.BackupPlans) == 0 {
		return RoutePattern{}, false
	}
	return s.BackupPlans[0], true
}

// Patterns returns every pattern in core, backup, chaos order.
func (s Strategy) Patterns() []RoutePattern {
	out := make([]RoutePattern, 0, len(s.CorePlan)+len(s.BackupPlans)+len(s.ChaosPlans))
	out = append(out, s.CorePlan...)
	out = append(out, s.BackupPlans...)
	return append(out, s.ChaosPlans...)
}
