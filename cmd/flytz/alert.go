package main

import (
	"errors"
	"fmt"
	"strconv"

	"flytz/cmd/flytz/ui"
	"flytz/internal/alerts"
	"flytz/internal/store"

	"github.com/spf13/cobra"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Manage price alerts on saved strategies",
}

var alertSetCmd = &cobra.Command{
	Use:   "set [saved-id] [target-price]",
	Short: "Set the target price for a saved strategy",
	Args:  cobra.ExactArgs(2),
	RunE:  runAlertSet,
}

var alertShowCmd = &cobra.Command{
	Use:   "show [saved-id]",
	Short: "Show one alert, or all alerts when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAlertShow,
}

var alertCheckCmd = &cobra.Command{
	Use:   "check [saved-id]",
	Short: "Re-run the saved search and compare the cheapest deal to the alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertCheck,
}

var alertDeleteCmd = &cobra.Command{
	Use:   "delete [saved-id]",
	Short: "Remove the alert from a saved strategy",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertDelete,
}

func init() {
	alertCmd.AddCommand(alertSetCmd)
	alertCmd.AddCommand(alertShowCmd)
	alertCmd.AddCommand(alertCheckCmd)
	alertCmd.AddCommand(alertDeleteCmd)
}

func runAlertSet(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid target price %q", args[1])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.store.GetStrategy(args[0]); err != nil {
		return err
	}
	alert, err := a.store.SetAlert(args[0], target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, alert)
	}
	fmt.Fprintln(out, a.styles.Success.Render(alerts.SetMessage(alert.TargetPrice)))
	return nil
}

func runAlertShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		alert, err := a.store.Alert(args[0])
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintln(out, a.styles.Muted.Render("No alert set for "+args[0]+"."))
			return nil
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, alert)
		}
		fmt.Fprintf(out, "%s  $%s\n", alert.StrategyID, strconv.FormatFloat(alert.TargetPrice, 'f', -1, 64))
		return nil
	}

	all, err := a.store.ListAlerts()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, all)
	}
	if len(all) == 0 {
		fmt.Fprintln(out, a.styles.Muted.Render("No alerts set."))
		return nil
	}
	t := ui.NewSimpleTable("Price Alerts", []string{"Strategy", "Target", "Set"})
	for _, al := range all {
		t.AddRow(al.StrategyID, "$"+strconv.FormatFloat(al.TargetPrice, 'f', -1, 64), al.CreatedAt.Local().Format("2006-01-02"))
	}
	fmt.Fprint(out, t.View(a.styles))
	return nil
}

func runAlertCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.store.GetStrategy(args[0])
	if err != nil {
		return err
	}
	alert, err := a.store.Alert(saved.ID)
	if err != nil {
		return err
	}

	deals, err := a.flights.SearchDeals(ctx, saved.Profile, saved.Trip)
	if err != nil {
		return fmt.Errorf("deal search failed: %w", err)
	}
	trig, fired := alerts.Check(alert, deals)

	out := cmd.OutOrStdout()
	if jsonOutput {
		res := dealsResult{Deals: deals, Live: liveDeals(deals)}
		if fired {
			res.Alert = &trig
		}
		return printJSON(out, res)
	}
	if !fired {
		cheapest := "none"
		if len(deals) > 0 {
			cheapest = "$" + deals[0].Price.Total
		}
		fmt.Fprintf(out, "No drop yet. Cheapest: %s, target: $%s\n", cheapest, strconv.FormatFloat(alert.TargetPrice, 'f', -1, 64))
		return nil
	}
	fmt.Fprintln(out, a.styles.Success.Render(trig.Title))
	fmt.Fprintln(out, trig.Body)
	return nil
}

func runAlertDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.DeleteAlert(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Alert removed"))
	return nil
}
