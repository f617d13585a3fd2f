package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"flytz/cmd/flytz/ui"
	"flytz/internal/advisor"
	"flytz/internal/alerts"
	"flytz/internal/flights"
	"flytz/internal/store"
	"flytz/internal/strategy"
	"flytz/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tripFrom   []string
	tripTo     []string
	tripChaos  int
	tripBudget float64
	tripDate   string
	tripFlex   int
	tripDays   int

	planDeals   bool
	planAnalyze bool
	planCountry string
	planSave    string

	dealsAlert string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a routing strategy",
	Long: `Generates the routing strategy for a trip: core, backup and chaos plans,
solutions, search links and AI prompts.

Example:
  flytz plan --from JFK --to Japan --chaos 4 --budget 1200 --date 2025-05-10 --flex 3 --deals --analyze --save "Tokyo spring"`,
	RunE: runPlan,
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Search flight deals for a trip",
	Long: `Searches live Amadeus offers through the regional hubs, or the demo
inventory when no credentials are configured. With --alert, the cheapest deal
is checked against that saved strategy's price alert.`,
	RunE: runDeals,
}

var verifyCmd = &cobra.Command{
	Use:   "verify [saved-id] [deal-id]",
	Short: "Re-price a saved deal with the provider",
	Args:  cobra.ExactArgs(2),
	RunE:  runVerify,
}

func addTripFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&tripFrom, "from", nil, "Home airports, comma separated (e.g. JFK,EWR)")
	cmd.Flags().StringSliceVar(&tripTo, "to", nil, "Destination regions or airports (e.g. Japan)")
	cmd.Flags().IntVar(&tripChaos, "chaos", 3, "Chaos level 1-5")
	cmd.Flags().Float64Var(&tripBudget, "budget", 2000, "Maximum budget in USD")
	cmd.Flags().StringVar(&tripDate, "date", "", "Departure date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&tripFlex, "flex", 3, "Flexible days around the date")
	cmd.Flags().IntVar(&tripDays, "days", 7, "Minimum trip length in days")
}

func init() {
	addTripFlags(planCmd)
	planCmd.Flags().BoolVar(&planDeals, "deals", false, "Also search flight deals")
	planCmd.Flags().BoolVar(&planAnalyze, "analyze", false, "Run the AI analysis (implies --deals)")
	planCmd.Flags().StringVar(&planCountry, "country", "", "Focus the analysis on deals arriving in this country (implies --analyze)")
	planCmd.Flags().StringVar(&planSave, "save", "", "Save the run under this name")

	addTripFlags(dealsCmd)
	dealsCmd.Flags().StringVar(&dealsAlert, "alert", "", "Saved strategy whose price alert should be checked")
}

// tripFromFlags builds the profile and trip from the shared flags.
func tripFromFlags(now time.Time) (types.FlightProfile, types.TripPlan, error) {
	if len(tripFrom) == 0 {
		return types.FlightProfile{}, types.TripPlan{}, errors.New("--from is required")
	}
	if len(tripTo) == 0 {
		return types.FlightProfile{}, types.TripPlan{}, errors.New("--to is required")
	}
	date := tripDate
	if date == "" {
		date = now.Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return types.FlightProfile{}, types.TripPlan{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
	}

	home := make([]string, 0, len(tripFrom))
	for _, a := range tripFrom {
		if a = strings.ToUpper(strings.TrimSpace(a)); a != "" {
			home = append(home, a)
		}
	}
	regions := make([]string, 0, len(tripTo))
	for _, r := range tripTo {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}

	profile := types.FlightProfile{
		HomeAirports: home,
		ChaosLevel:   types.ChaosLevel(tripChaos).Clamp(),
		BudgetMax:    tripBudget,
	}
	trip := types.TripPlan{
		DestinationRegions: regions,
		DurationMin:        tripDays,
		StartDate:          date,
		FlexibleDays:       tripFlex,
	}
	return profile, trip, nil
}

// planResult is the --json shape of `flytz plan`.
type planResult struct {
	Strategy  types.Strategy     `json:"strategy"`
	Deals     []types.FlightDeal `json:"deals,omitempty"`
	Score     *strategy.Score    `json:"score,omitempty"`
	Countries []string           `json:"countries,omitempty"`
	Country   string             `json:"country,omitempty"`
	Analysis  *types.AIAnalysis  `json:"aiAnalysis,omitempty"`
	Verdict   string             `json:"verdict,omitempty"`
	SavedID   string             `json:"savedId,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	profile, trip, err := tripFromFlags(time.Now())
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("Generating strategy",
		zap.Strings("from", profile.HomeAirports),
		zap.Strings("to", trip.DestinationRegions),
		zap.Int("chaos", int(profile.ChaosLevel)))

	res := planResult{Strategy: a.engine.Generate(profile, trip)}
	country := strings.TrimSpace(planCountry)
	analyze := planAnalyze || country != ""

	if planDeals || analyze {
		deals, err := a.flights.SearchDeals(ctx, profile, trip)
		if err != nil {
			return fmt.Errorf("deal search failed: %w", err)
		}
		res.Deals = deals
		res.Countries = flights.DestinationCountries(deals)
		if score, ok := strategy.ScoreDeals(deals, profile); ok {
			res.Score = &score
		}
	}

	var report advisor.Report
	if analyze {
		var analysis types.AIAnalysis
		if country != "" {
			focused := flights.DealsToCountry(res.Deals, country)
			if len(focused) == 0 {
				return fmt.Errorf("no deals arrive in %s (found: %s)", country, strings.Join(res.Countries, ", "))
			}
			res.Country = flights.DealCountry(focused[0])
			analysis = a.advisor.RefineForCountry(ctx, res.Strategy, focused, profile, res.Country)
		} else {
			analysis = a.advisor.RefineStrategy(ctx, res.Strategy, res.Deals, profile)
		}
		res.Analysis = &analysis
		report = advisor.ParseReport(analysis.Recommendation)
		res.Verdict = advisor.Verdict(report)
	}

	if name := strings.TrimSpace(planSave); name != "" {
		saved := a.engine.Snapshot(name, profile, trip, res.Strategy, res.Deals, res.Analysis, time.Now())
		if err := a.store.SaveStrategy(saved); err != nil {
			return fmt.Errorf("failed to save strategy: %w", err)
		}
		res.SavedID = saved.ID
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}

	fmt.Fprint(out, ui.RenderStrategy(a.styles, res.Strategy))
	if planDeals || analyze {
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.RenderDeals(a.styles, res.Deals, liveDeals(res.Deals)))
		renderSearchSummary(out, a.styles, res.Score, res.Countries)
	}
	if res.Analysis != nil {
		fmt.Fprintln(out)
		if res.Country != "" {
			fmt.Fprintln(out, a.styles.Header.Render("FOCUS: "+strings.ToUpper(res.Country)))
		}
		fmt.Fprint(out, ui.RenderReport(a.styles, report, 80))
	}
	if res.SavedID != "" {
		fmt.Fprintln(out, a.styles.Success.Render("Saved as "+res.SavedID))
	}
	return nil
}

// dealsResult is the --json shape of `flytz deals`.
type dealsResult struct {
	Deals     []types.FlightDeal `json:"deals"`
	Live      bool               `json:"live"`
	Score     *strategy.Score    `json:"score,omitempty"`
	Countries []string           `json:"countries,omitempty"`
	Alert     *alerts.Trigger    `json:"alert,omitempty"`
}

func runDeals(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	profile, trip, err := tripFromFlags(time.Now())
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	deals, err := a.flights.SearchDeals(ctx, profile, trip)
	if err != nil {
		return fmt.Errorf("deal search failed: %w", err)
	}
	res := dealsResult{Deals: deals, Live: liveDeals(deals), Countries: flights.DestinationCountries(deals)}
	if score, ok := strategy.ScoreDeals(deals, profile); ok {
		res.Score = &score
	}

	if dealsAlert != "" {
		alert, err := a.store.Alert(dealsAlert)
		switch {
		case err == nil:
			if trig, ok := alerts.Check(alert, deals); ok {
				res.Alert = &trig
			}
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("no price alert for %s", dealsAlert)
		default:
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprint(out, ui.RenderDeals(a.styles, deals, res.Live))
	renderSearchSummary(out, a.styles, res.Score, res.Countries)
	if res.Alert != nil {
		fmt.Fprintln(out, a.styles.Success.Render(res.Alert.Title))
		fmt.Fprintln(out, res.Alert.Message)
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.store.GetStrategy(args[0])
	if err != nil {
		return fmt.Errorf("saved strategy %s: %w", args[0], err)
	}
	deal, ok := saved.FindDeal(args[1])
	if !ok {
		return fmt.Errorf("deal %s not found in %s", args[1], saved.Name)
	}

	conf, err := a.flights.ConfirmPrice(ctx, deal.RawOffer)
	out := cmd.OutOrStdout()
	if errors.Is(err, flights.ErrNotVerifiable) {
		fmt.Fprintln(out, a.styles.Warning.Render("Demo deal: "+err.Error()))
		return nil
	}
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, conf)
	}
	if conf.Confirmed {
		fmt.Fprintln(out, a.styles.Success.Render(fmt.Sprintf("Price confirmed: %s %s", deal.Price.Currency, conf.Price)))
		return nil
	}
	fmt.Fprintln(out, a.styles.Error.Render("Not confirmed: "+conf.Error))
	return nil
}

// renderSearchSummary prints the savings rank and arrival countries under a
// deals table.
func renderSearchSummary(out io.Writer, styles ui.Styles, score *strategy.Score, countries []string) {
	if score != nil {
		fmt.Fprint(out, ui.RenderScore(styles, *score))
	}
	fmt.Fprint(out, ui.RenderCountries(styles, countries))
}

// liveDeals reports whether the deals came from the provider rather than the
// demo inventory.
func liveDeals(deals []types.FlightDeal) bool {
	return len(deals) > 0 && deals[0].Source == types.SourceAmadeus
}
