// Package types holds the shared Flytz domain model: the traveller's profile and
// trip, the generated routing strategy, priced flight deals and the snapshots
// persisted by the store. JSON tags follow the web client's camelCase wire shape
// so saved snapshots stay interchangeable between the CLI, the API and the browser.
package types

import "time"

// ChaosLevel is the 1-5 adventure preference trading convenience for lower fares.
type ChaosLevel int

const (
	ChaosMin ChaosLevel = 1
	ChaosMax ChaosLevel = 5
)

// Clamp pins the level into the supported 1-5 range.
func (c ChaosLevel) Clamp() ChaosLevel {
	switch {
	case c < ChaosMin:
		return ChaosMin
	case c > ChaosMax:
		return ChaosMax
	default:
		return c
	}
}

// FlightProfile describes the traveller. Immutable for one strategy run.
type FlightProfile struct {
	HomeAirports []string   `json:"homeAirports"`
	ChaosLevel   ChaosLevel `json:"chaosLevel"`
	BudgetMax    float64    `json:"budgetMax"`
}

// TripPlan describes where and when the traveller wants to go.
type TripPlan struct {
	DestinationRegions []string `json:"destinationRegions"`
	DurationMin        int      `json:"durationMin"`
	StartDate          string   `json:"startDate"` // YYYY-MM-DD
	FlexibleDays       int      `json:"flexibleDays"`
}

// PrimaryOrigin returns the first home airport or "" when none is set.
func (p FlightProfile) PrimaryOrigin() string {
	if len(p.HomeAirports) == 0 {
		return ""
	}
	return p.HomeAirports[0]
}

// PrimaryDestination returns the first destination token or "" when none is set.
func (t TripPlan) PrimaryDestination() string {
	if len(t.DestinationRegions) == 0 {
		return ""
	}
	return t.DestinationRegions[0]
}

// SavedStrategy is a named snapshot of one wizard run.
type SavedStrategy struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	CreatedAt     time.Time     `json:"createdAt"`
	OriginSummary string        `json:"originSummary"`
	TargetSummary string        `json:"targetSummary"`
	Profile       FlightProfile `json:"profile"`
	Trip          TripPlan      `json:"trip"`
	Strategy      Strategy      `json:"strategy"`
	Deals         []FlightDeal  `json:"deals"`
	AIAnalysis    *AIAnalysis   `json:"aiAnalysis"`
}

// FindDeal returns the deal with the given id from the snapshot.
func (s *SavedStrategy) FindDeal(id string) (FlightDeal, bool) {
	for _, d := range s.Deals {
		if d.ID == id {
			return d, true
		}
	}
	return FlightDeal{}, false
}

// AIAnalysis is the narrative report produced by the advisor.
type AIAnalysis struct {
	Recommendation string   `json:"recommendation"`
	TopPickID      string   `json:"topPickId,omitempty"`
	RiskAssessment string   `json:"riskAssessment"`
	HacksDetected  []string `json:"hacksDetected"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the trip assistant conversation.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// PriceAlert is a target price registered against a strategy.
type PriceAlert struct {
	StrategyID  string    `json:"strategyId"`
	TargetPrice float64   `json:"targetPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WaitlistEntry is one locally backed-up email capture.
type WaitlistEntry struct {
	Email  string    `json:"email"`
	Date   time.Time `json:"date"`
	Synced bool      `json:"synced"`
}
