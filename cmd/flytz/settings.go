package main

import (
	"fmt"
	"strings"

	"flytz/cmd/flytz/ui"
	"flytz/internal/config"
	"flytz/internal/flights"
	"flytz/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage locally stored API keys",
	Long: `Stores Amadeus and Gemini keys in the local database. Keys from the config
file or the environment take precedence over stored ones.

Keys: ` + strings.Join(config.SettingKeys, ", "),
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored keys (masked) and the effective service status",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a key; an empty value removes it",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the Amadeus credentials against the provider",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := a.store.Settings()
	if err != nil {
		return err
	}
	masked := make(map[string]string, len(config.SettingKeys))
	for _, k := range config.SettingKeys {
		masked[k] = server.MaskSecret(stored[k])
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, masked)
	}
	t := ui.NewSimpleTable("Stored Settings", []string{"Key", "Value"})
	for _, k := range config.SettingKeys {
		v := masked[k]
		if v == "" {
			v = "(not set)"
		}
		t.AddRow(k, v)
	}
	fmt.Fprint(out, t.View(a.styles))
	fmt.Fprintln(out)
	fmt.Fprintln(out, statusLine(a.styles, "Amadeus", a.cfg.HasAmadeusCredentials(), "live data", "demo data"))
	fmt.Fprintln(out, statusLine(a.styles, "Gemini", a.cfg.HasLLMKey(), "online", "offline"))
	return nil
}

func statusLine(styles ui.Styles, name string, ok bool, on, off string) string {
	if ok {
		return styles.Bold.Render(name+": ") + styles.Success.Render(on)
	}
	return styles.Bold.Render(name+": ") + styles.Warning.Render(off)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	known := false
	for _, k := range config.SettingKeys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(config.SettingKeys, ", "))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SaveSettings(map[string]string{key: args[1]}); err != nil {
		return err
	}
	logger.Info("Setting saved", zap.String("key", key))
	if strings.TrimSpace(args[1]) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Removed "+key))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.styles.Success.Render("Saved "+key))
	return nil
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !a.cfg.HasAmadeusCredentials() {
		fmt.Fprintln(out, a.styles.Warning.Render("No Amadeus credentials configured; searches use demo data."))
		return nil
	}
	client := flights.NewClient(a.cfg.Amadeus)
	if !client.ValidateCredentials(ctx, a.cfg.Amadeus.ClientID, a.cfg.Amadeus.ClientSecret) {
		return fmt.Errorf("amadeus rejected the credentials for %s", a.cfg.AmadeusBaseURL())
	}
	fmt.Fprintln(out, a.styles.Success.Render("Amadeus credentials are valid."))
	return nil
}
