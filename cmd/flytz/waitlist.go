package main

import (
	"fmt"
	"os"

	"flytz/internal/export"

	"github.com/spf13/cobra"
)

var waitlistOutput string

var waitlistCmd = &cobra.Command{
	Use:   "waitlist",
	Short: "Manage the local waitlist backup",
}

var waitlistAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Record an email address",
	Args:  cobra.ExactArgs(1),
	RunE:  runWaitlistAdd,
}

var waitlistExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the waitlist as CSV",
	RunE:  runWaitlistExport,
}

var waitlistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every waitlist entry",
	RunE:  runWaitlistClear,
}

func init() {
	waitlistExportCmd.Flags().StringVarP(&waitlistOutput, "output", "o", "", "Output file (default: "+export.WaitlistFilename+", - for stdout)")

	waitlistCmd.AddCommand(waitlistAddCmd)
	waitlistCmd.AddCommand(waitlistExportCmd)
	waitlistCmd.AddCommand(waitlistClearCmd)
}

func runWaitlistAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.store.AddWaitlist(args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), entry)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("You're on the list: "+entry.Email))
	return nil
}

func runWaitlistExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.store.Waitlist()
	if err != nil {
		return err
	}
	if waitlistOutput == "-" {
		return export.WaitlistCSV(entries, cmd.OutOrStdout())
	}

	path := waitlistOutput
	if path == "" {
		path = export.WaitlistFilename
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WaitlistCSV(entries, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render(fmt.Sprintf("Wrote %d entries to %s", len(entries), path)))
	return nil
}

func runWaitlistClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.ClearWaitlist(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Waitlist cleared"))
	return nil
}
