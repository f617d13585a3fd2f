package ui

import (
	"fmt"
	"strconv"
	"strings"

	"flytz/internal/advisor"
	"flytz/internal/strategy"
	"flytz/internal/types"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// RenderMarkdown renders model output for the terminal. The raw text is
// returned when glamour cannot build a renderer.
func RenderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// searchCellWidth keeps the search table inside a normal terminal; the
// primary link is printed in full under it.
const searchCellWidth = 60

// RenderStrategy renders the strategy dashboard: summary, patterns by plan,
// solutions, search links and prompts.
func RenderStrategy(styles Styles, s types.Strategy) string {
	var sb strings.Builder
	sb.WriteString(styles.Header.Render("FLYTZ STRATEGY"))
	sb.WriteString("\n\n")
	sb.WriteString(styles.Body.Render(s.Summary))
	sb.WriteString("\n\n")

	renderPlan(&sb, styles, "Core Plan", s.CorePlan)
	renderPlan(&sb, styles, "Backup Plans", s.BackupPlans)
	renderPlan(&sb, styles, "Chaos Plans", s.ChaosPlans)

	if len(s.Solutions) > 0 {
		sb.WriteString(styles.Title.Render("Solutions"))
		sb.WriteString("\n")
		for _, sol := range s.Solutions {
			sb.WriteString(fmt.Sprintf("%s %s\n", styles.Warning.Render("["+sol.Condition+"]"), styles.Bold.Render(sol.Title)))
			sb.WriteString("  " + styles.Muted.Render(sol.Description) + "\n")
			for _, a := range sol.SuggestedActions {
				sb.WriteString("  - " + a + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if len(s.SearchLinks) > 0 {
		t := NewSimpleTable("Search", []string{"Provider", "Label", "URL"})
		t.MaxCellWidth = searchCellWidth
		primary := ""
		for _, l := range s.SearchLinks {
			label := l.Label
			if l.Primary {
				label += " *"
				primary = l.URL
			}
			t.AddRow(l.Provider, label, l.URL)
		}
		sb.WriteString(t.View(styles))
		if primary != "" && lipgloss.Width(primary) > searchCellWidth {
			sb.WriteString(styles.Muted.Render("* ") + primary + "\n")
		}
		sb.WriteString("\n")
	}

	if len(s.Prompts) > 0 {
		sb.WriteString(styles.Title.Render("Prompts"))
		sb.WriteString("\n")
		for _, p := range s.Prompts {
			sb.WriteString(styles.Prompt.Render(p.Tool) + " " + styles.Muted.Render(p.Description) + "\n")
			sb.WriteString(styles.Card.Render(p.PromptText) + "\n")
		}
	}
	return sb.String()
}

func renderPlan(sb *strings.Builder, styles Styles, title string, patterns []types.RoutePattern) {
	if len(patterns) == 0 {
		return
	}
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")
	for _, p := range patterns {
		risk := styles.RiskStyle(string(p.Risk)).Render(string(p.Risk) + " risk")
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n", styles.Bold.Render(p.Name), risk, styles.Success.Render(p.EstimatedSavings)))
		sb.WriteString("  " + styles.Muted.Render(strings.Join(p.Nodes, " -> ")) + "\n")
		sb.WriteString("  " + p.Description + "\n")
		for _, l := range p.StepLinks {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", l.Label, l.URL))
		}
	}
	sb.WriteString("\n")
}

// RenderDeals renders deals as a table. An empty list gets a one-line notice.
func RenderDeals(styles Styles, deals []types.FlightDeal, live bool) string {
	if len(deals) == 0 {
		return styles.Muted.Render("No deals found.") + "\n"
	}
	title := "Demo Deals"
	if live {
		title = "Live Deals"
	}
	t := NewSimpleTable(title, []string{"ID", "Price", "Airline", "Route", "Stops", "Duration"})
	for _, d := range deals {
		route := d.Origin()
		for _, l := range d.Layovers() {
			route += "-" + l
		}
		route += "-" + d.Destination()
		t.AddRow(d.ID, d.Price.Currency+" "+d.Price.Total, strings.Join(d.Airlines, ","), route, strconv.Itoa(d.Stops), d.Duration)
	}
	return t.View(styles)
}

// RenderScore renders the savings rank of a search.
func RenderScore(styles Styles, sc strategy.Score) string {
	badge := styles.Success
	switch sc.Rank {
	case strategy.RankB:
		badge = styles.Info
	case strategy.RankD:
		badge = styles.Warning
	}
	line := badge.Render("RANK "+sc.Rank) + " " + styles.Bold.Render(sc.Title)
	if sc.OverBudget() {
		return line + styles.Muted.Render(fmt.Sprintf("  over budget by $%.0f", -sc.Savings)) + "\n"
	}
	return line + styles.Muted.Render(fmt.Sprintf("  saved $%.0f (%.0f%% of budget)", sc.Savings, sc.SavingsPercent)) + "\n"
}

// RenderCountries lists the arrival countries of a search.
func RenderCountries(styles Styles, countries []string) string {
	if len(countries) == 0 {
		return ""
	}
	return styles.Bold.Render("Destinations: ") + strings.Join(countries, ", ") + "\n"
}

// RenderReport renders a parsed analysis. Unstructured text is rendered as
// Markdown.
func RenderReport(styles Styles, r advisor.Report, width int) string {
	if !r.Structured() {
		return RenderMarkdown(r.Raw, width)
	}
	var sb strings.Builder
	section := func(title, body string) {
		if body == "" {
			return
		}
		sb.WriteString(styles.Title.Render(title) + "\n")
		for _, b := range advisor.Bullets(body) {
			sb.WriteString("  - " + b + "\n")
		}
		sb.WriteString("\n")
	}
	section("Market Reality", r.MarketReality)
	section("Destination Intel", r.DestinationIntel)
	section("Risk Assessment", r.RiskAssessment)
	section("Optimization Tactics", r.OptimizationTactics)
	section("Insider Tips", r.InsiderTips)
	if v := advisor.Verdict(r); v != "" {
		sb.WriteString(styles.Header.Render("VERDICT: "+v) + "\n")
	} else if r.FinalVerdict != "" {
		section("Final Verdict", r.FinalVerdict)
	}
	return sb.String()
}
