package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/config"
	"github.com/ShayCichocki/paperbar/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify paperbar configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the value in the user config file.

Configuration is stored at ~/.config/paperbar/config.yaml
Project-specific overrides can be placed in .paperbar.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		if err := config.SetUserValue(args[0], args[1]); err != nil {
			return err
		}
		tui.Success(out, "Set %s = %s", args[0], displayValue(args[0], args[1]))
		tui.Detail(out, "Saved to %s", config.GetUserConfigPath())
		warnKeyFormat(cmd, args[0], args[1])
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, displayValue(args[0], value))
		return nil
	}

	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", key, displayValue(key, value))
	}
	for _, provider := range []string{config.ProviderAnthropic, config.ProviderOpenAI} {
		fmt.Fprintf(out, "%s key source: %s\n", provider, config.GetAPIKeySource(cfg, provider))
	}
	if path := config.GetProjectConfigPath(); path != "" {
		fmt.Fprintf(out, "project config: %s\n", path)
	}
	fmt.Fprintf(out, "user config: %s\n", config.GetUserConfigPath())
	return nil
}

// warnKeyFormat flags an API key that does not look like one for its
// provider. ${VAR} references are checked when they are expanded instead.
func warnKeyFormat(cmd *cobra.Command, key, value string) {
	if !config.IsSecret(key) || strings.Contains(value, "${") {
		return
	}
	provider, _, _ := strings.Cut(key, ".")
	if err := config.ValidateAPIKey(provider, value); err != nil {
		tui.Warning(cmd.ErrOrStderr(), "%v", err)
	}
}

// displayValue masks secrets and marks empty values.
func displayValue(key, value string) string {
	if config.IsSecret(key) {
		return config.MaskAPIKey(value)
	}
	if value == "" {
		return "(not set)"
	}
	return value
}
