package main

import (
	"fmt"
	"strconv"
	"strings"

	"flytz/cmd/flytz/ui"
	"flytz/internal/flights"

	"github.com/spf13/cobra"
)

var hotelsCmd = &cobra.Command{
	Use:   "hotels [city-code]",
	Short: "List hotel offers in a city",
	Args:  cobra.ExactArgs(1),
	RunE:  runHotels,
}

var activitiesCmd = &cobra.Command{
	Use:   "activities [lat] [lon]",
	Short: "List tours and activities near a point",
	Args:  cobra.ExactArgs(2),
	RunE:  runActivities,
}

var inspireCmd = &cobra.Command{
	Use:   "inspire [origin]",
	Short: "Show the cheapest destinations from an airport",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspire,
}

var locationsCmd = &cobra.Command{
	Use:   "locations [keyword]",
	Short: "Search airports, cities and regions",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocations,
}

func runHotels(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	city := strings.ToUpper(strings.TrimSpace(args[0]))
	hotels := a.flights.SearchHotels(ctx, city)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, hotels)
	}
	if len(hotels) == 0 {
		fmt.Fprintln(out, a.styles.Muted.Render("No hotels found in "+city+"."))
		return nil
	}
	t := ui.NewSimpleTable("Hotels in "+city, []string{"Name", "Rating", "Price"})
	for _, h := range hotels {
		rating := "-"
		if h.Rating > 0 {
			rating = strconv.FormatFloat(h.Rating, 'f', -1, 64)
		}
		t.AddRow(h.Name, rating, h.Price.Currency+" "+h.Price.Total)
	}
	fmt.Fprint(out, t.View(a.styles))
	return nil
}

func runActivities(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	acts := a.flights.SearchActivities(ctx, lat, lon)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, acts)
	}
	if len(acts) == 0 {
		fmt.Fprintln(out, a.styles.Muted.Render("No activities found."))
		return nil
	}
	t := ui.NewSimpleTable("Activities", []string{"Name", "Rating", "Price"})
	for _, act := range acts {
		price := "-"
		if act.Price != nil {
			price = act.Price.CurrencyCode + " " + act.Price.Amount
		}
		t.AddRow(act.Name, act.Rating, price)
	}
	fmt.Fprint(out, t.View(a.styles))
	return nil
}

func runInspire(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	origin := strings.ToUpper(strings.TrimSpace(args[0]))
	flightsFrom := a.flights.Inspiration(ctx, origin)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, flightsFrom)
	}
	if len(flightsFrom) == 0 {
		fmt.Fprintln(out, a.styles.Muted.Render("No inspiration from "+origin+"."))
		return nil
	}
	t := ui.NewSimpleTable("Cheapest from "+origin, []string{"Destination", "Depart", "Return", "Price"})
	for _, f := range flightsFrom {
		dest := f.Destination
		if ap, ok := flights.LookupAirport(dest); ok {
			dest += " (" + ap.City + ")"
		}
		t.AddRow(dest, f.DepartureDate, f.ReturnDate, f.Price.Currency+" "+f.Price.Total)
	}
	fmt.Fprint(out, t.View(a.styles))
	return nil
}

func runLocations(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.flights.SearchLocations(ctx, args[0])

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, opts)
	}
	if len(opts) == 0 {
		fmt.Fprintln(out, a.styles.Muted.Render("No matches."))
		return nil
	}
	t := ui.NewSimpleTable("", []string{"Label", "Value", "Type"})
	for _, o := range opts {
		t.AddRow(o.Label, o.Value, string(o.Type))
	}
	fmt.Fprint(out, t.View(a.styles))
	return nil
}
