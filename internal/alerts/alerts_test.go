package alerts

import (
	"testing"

	"flytz/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deal(id, total string) types.FlightDeal {
	return types.FlightDeal{ID: id, Price: types.Price{Total: total, Currency: "USD"}}
}

func TestCheck(t *testing.T) {
	alert := types.PriceAlert{StrategyID: "s1", TargetPrice: 500}

	tests := []struct {
		name  string
		deals []types.FlightDeal
		fire  bool
	}{
		{"no deals", nil, false},
		{"cheapest above target", []types.FlightDeal{deal("a", "512.30")}, false},
		{"equal fires", []types.FlightDeal{deal("a", "500.00")}, true},
		{"below fires", []types.FlightDeal{deal("a", "485.00"), deal("b", "900.00")}, true},
		{"only first deal counts", []types.FlightDeal{deal("a", "650.00"), deal("b", "300.00")}, false},
		{"unparsable price", []types.FlightDeal{deal("a", "n/a")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fired := Check(alert, tt.deals)
			assert.Equal(t, tt.fire, fired)
		})
	}
}

func TestCheck_Messages(t *testing.T) {
	trig, ok := Check(types.PriceAlert{StrategyID: "s1", TargetPrice: 500}, []types.FlightDeal{deal("a", "485.00")})
	require.True(t, ok)

	assert.Equal(t, "s1", trig.StrategyID)
	assert.Equal(t, "a", trig.Deal.ID)
	assert.Equal(t, 485.0, trig.Price)
	assert.Equal(t, TriggerTitle, trig.Title)
	assert.Equal(t, "Found a flight for $485 which is below your target of $500.", trig.Body)
	assert.Equal(t, "Good news! We found a flight for $485, which is below your target of $500.", trig.Message)
}

func TestCheck_NoTarget(t *testing.T) {
	_, ok := Check(types.PriceAlert{StrategyID: "s1"}, []types.FlightDeal{deal("a", "1.00")})
	assert.False(t, ok)
}

func TestSetMessage(t *testing.T) {
	assert.Equal(t, "Alert Set! We'll notify you if we find a price below $450.5 on your next search.", SetMessage(450.5))
	assert.Equal(t, "Alert Set! We'll notify you if we find a price below $450 on your next search.", SetMessage(450))
}
