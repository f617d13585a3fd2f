package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flytz/cmd/flytz/ui"
	"flytz/internal/advisor"
	"flytz/internal/export"
	"flytz/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOutput string
	savedOutput  string
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved strategies",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved strategies, newest first",
	RunE:  runSavedList,
}

var savedShowCmd = &cobra.Command{
	Use:   "show [saved-id]",
	Short: "Show a saved strategy with its deals and analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedShow,
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete [saved-id]",
	Short: "Delete a saved strategy",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedDelete,
}

var savedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the saved strategies document in the browser client's format",
	RunE:  runSavedExport,
}

var savedImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the saved strategies with a document exported from the browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved data",
}

var exportICSCmd = &cobra.Command{
	Use:   "ics [saved-id] [deal-id]",
	Short: "Export a saved deal as an iCalendar event",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportICS,
}

func init() {
	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedShowCmd)
	savedCmd.AddCommand(savedDeleteCmd)
	savedCmd.AddCommand(savedExportCmd)
	savedCmd.AddCommand(savedImportCmd)

	savedExportCmd.Flags().StringVarP(&savedOutput, "output", "o", "-", "Output file, - for stdout")

	exportICSCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: flytz_flight_<deal-id>.ics, - for stdout)")
	exportCmd.AddCommand(exportICSCmd)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.store.ListStrategies()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, all)
	}
	if len(all) == 0 {
		fmt.Fprintln(out, a.styles.Muted.Render("No saved strategies."))
		return nil
	}
	t := ui.NewSimpleTable("Saved Strategies", []string{"ID", "Name", "Route", "Deals", "Created"})
	for _, s := range all {
		t.AddRow(s.ID, s.Name, s.OriginSummary+" -> "+s.TargetSummary, fmt.Sprint(len(s.Deals)), s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprint(out, t.View(a.styles))
	return nil
}

func runSavedShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.store.GetStrategy(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, s)
	}
	fmt.Fprintln(out, a.styles.Title.Render(s.Name)+" "+a.styles.Muted.Render(s.ID))
	fmt.Fprint(out, ui.RenderStrategy(a.styles, s.Strategy))
	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RenderDeals(a.styles, s.Deals, liveDeals(s.Deals)))
	if s.AIAnalysis != nil {
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.RenderReport(a.styles, advisor.ParseReport(s.AIAnalysis.Recommendation), 80))
	}
	if alert, err := a.store.Alert(s.ID); err == nil {
		fmt.Fprintln(out, a.styles.Info.Render(fmt.Sprintf("Price alert: $%v", alert.TargetPrice)))
	}
	return nil
}

func runSavedDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.store.DeleteStrategy(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no saved strategies")
	}
	if err := a.store.DeleteAlert(args[0]); err != nil {
		logger.Warn("failed to delete alert", zap.String("id", args[0]), zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Deleted "+args[0]))
	return nil
}

func runExportICS(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.store.GetStrategy(args[0])
	if err != nil {
		return err
	}
	deal, ok := s.FindDeal(args[1])
	if !ok {
		return fmt.Errorf("deal %s not found in %s", args[1], s.Name)
	}
	data, err := export.DealICS(deal, time.Now())
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	path := exportOutput
	if path == "" {
		path = export.ICSFilename(deal.ID)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Wrote "+path))
	return nil
}

func runSavedExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := a.store.RawDocument(store.KeyStrategies)
	if errors.Is(err, store.ErrNotFound) {
		raw = []byte("[]")
	} else if err != nil {
		return err
	}
	if savedOutput == "" || savedOutput == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return err
	}
	if err := os.WriteFile(savedOutput, raw, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", savedOutput, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Wrote "+savedOutput))
	return nil
}

func runSavedImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.ImportDocument(store.KeyStrategies, raw); err != nil {
		return err
	}
	all, err := a.store.ListStrategies()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render(fmt.Sprintf("Imported %d strategies", len(all))))
	return nil
}
