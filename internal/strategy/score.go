package strategy

import (
	"strconv"

	"flytz/internal/types"
)

// Rank letters for a search result, best first.
const (
	RankS = "S"
	RankA = "A"
	RankB = "B"
	RankD = "D"
)

// Score grades the cheapest deal against the traveler's budget.
type Score struct {
	Rank           string  `json:"rank"`
	Title          string  `json:"title"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savingsPercent"`
}

// OverBudget reports whether the cheapest deal did not come in under budget.
func (s Score) OverBudget() bool {
	return s.Rank == RankD
}

// ScoreDeals ranks deals[0], which is expected to be the cheapest, by the share
// of the budget it saves: S above 40%, A above 20%, B above 0, D otherwise.
// It returns false when there are no deals.
func ScoreDeals(deals []types.FlightDeal, profile types.FlightProfile) (Score, bool) {
	if len(deals) == 0 {
		return Score{}, false
	}
	cheapest, err := strconv.ParseFloat(deals[0].Price.Total, 64)
	if err != nil {
		return Score{Rank: RankD, Title: "Over Budget"}, true
	}

	budget := profile.BudgetMax
	s := Score{Savings: budget - cheapest}
	if budget > 0 {
		s.SavingsPercent = (s.Savings / budget) * 100
	}

	switch {
	case budget <= 0:
		s.Rank, s.Title = RankD, "Over Budget"
	case s.SavingsPercent > 40:
		s.Rank, s.Title = RankS, "Elite Phantom"
	case s.SavingsPercent > 20:
		s.Rank, s.Title = RankA, "Grey Hat"
	case s.SavingsPercent > 0:
		s.Rank, s.Title = RankB, "Operator"
	default:
		s.Rank, s.Title = RankD, "Over Budget"
	}
	return s, true
}
