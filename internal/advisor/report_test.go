package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleReport = `# Strategic Analysis Report

1. **Market Reality Check**: Prices are **20% below** the seasonal average.
Well under the $1200 budget.

2. **Destination Intel**:
   - **Currency**: Yen (approx 1 USD = 150 JPY).
   - **Transit**: Excellent rail network.

## Risk Assessment
- The 55min layover in IST is tight.
- Self-transfer requires a visa check.

**Optimization Tactics**:
1. Shift to a Tuesday departure.
2. Check separate tickets via ` + "`SEA`" + `.

### Insider Tips
* Lounge access at HND is cheap.

6. **Final Verdict**: **BUY NOW**. Prices rarely dip further.
`

func TestParseReport_Sections(t *testing.T) {
	r := ParseReport(sampleReport)

	assert.True(t, r.Structured())
	assert.Equal(t, "Prices are 20% below the seasonal average.\nWell under the $1200 budget.", r.MarketReality)
	assert.Equal(t, "- Currency: Yen (approx 1 USD = 150 JPY).\n   - Transit: Excellent rail network.", r.DestinationIntel)
	assert.Equal(t, "- The 55min layover in IST is tight.\n- Self-transfer requires a visa check.", r.RiskAssessment)
	assert.Equal(t, "1. Shift to a Tuesday departure.\n2. Check separate tickets via SEA.", r.OptimizationTactics)
	assert.Equal(t, "* Lounge access at HND is cheap.", r.InsiderTips)
	assert.Equal(t, "BUY NOW. Prices rarely dip further.", r.FinalVerdict)
	assert.NotContains(t, r.Raw, "**")
	assert.NotContains(t, r.Raw, "#")
}

func TestParseReport_AlternateHeaders(t *testing.T) {
	r := ParseReport("Risks: none worth noting\nVerdict - wait for a sale")

	assert.Equal(t, "none worth noting", r.RiskAssessment)
	assert.Equal(t, "- wait for a sale", r.FinalVerdict)
	assert.Equal(t, VerdictWait, Verdict(r))
}

func TestParseReport_Unstructured(t *testing.T) {
	r := ParseReport("The **cheapest** fare looks fine.")

	assert.False(t, r.Structured())
	assert.Empty(t, r.MarketReality)
	assert.Equal(t, "The cheapest fare looks fine.", r.Raw)
}

func TestBullets(t *testing.T) {
	got := Bullets("- first\n\n* second\n  3. third  \nplain")
	assert.Equal(t, []string{"first", "second", "third", "plain"}, got)
	assert.Empty(t, Bullets(""))
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"BUY NOW. Prices are great.", VerdictBuyNow},
		{"Wait two weeks.", VerdictWait},
		{"CHANGE ROUTE via Seoul.", VerdictChangeRoute},
		{"Unclear.", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Verdict(Report{FinalVerdict: tt.text}), tt.text)
	}
}
