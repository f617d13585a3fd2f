package strategy

import (
	"time"

	"flytz/internal/types"
)

// Snapshot captures one run under a fresh ID so it can be saved. Deals are
// copied into a non-nil slice.
func (e *Engine) Snapshot(name string, profile types.FlightProfile, trip types.TripPlan, s types.Strategy, deals []types.FlightDeal, analysis *types.AIAnalysis, now time.Time) types.SavedStrategy {
	kept := make([]types.FlightDeal, len(deals))
	copy(kept, deals)
	return types.SavedStrategy{
		ID:            e.newID(),
		Name:          name,
		CreatedAt:     now.UTC(),
		OriginSummary: profile.PrimaryOrigin(),
		TargetSummary: trip.PrimaryDestination(),
		Profile:       profile,
		Trip:          trip,
		Strategy:      s,
		Deals:         kept,
		AIAnalysis:    analysis,
	}
}

// Snapshot uses the default engine.
func Snapshot(name string, profile types.FlightProfile, trip types.TripPlan, s types.Strategy, deals []types.FlightDeal, analysis *types.AIAnalysis, now time.Time) types.SavedStrategy {
	return defaultEngine.Snapshot(name, profile, trip, s, deals, analysis, now)
}
