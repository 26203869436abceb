package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/aurion/internal/config"
	"github.com/theirongolddev/aurion/internal/tui/theme"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	out := cmd.OutOrStdout()
	path := configPath()

	if flagJSON {
		return printJSON(out, cfg)
	}

	fmt.Fprintf(out, "  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [General]")
	fmt.Fprintf(out, "    Database:      %s\n", databasePath())
	fmt.Fprintf(out, "    Poll interval: %s\n", cfg.PollInterval())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Roster]")
	for i, p := range cfg.PartnerRoster() {
		fmt.Fprintf(out, "    %d. %s\n", i+1, p)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Theme: %s", cfg.Appearance.Theme)
	if !theme.Known(cfg.Appearance.Theme) {
		fmt.Fprintf(out, " (unknown, using %s; choose from %s)", theme.FlexokiDark.Name, strings.Join(theme.Names(), ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Daemon]")
	fmt.Fprintf(out, "    Address: %s\n", cfg.Daemon.Addr)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Log]")
	fmt.Fprintf(out, "    Level:    %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "    TUI log:  %s\n", config.LogPath(cfg))
	fmt.Fprintln(out)

	if !config.Exists(path) {
		fmt.Fprintln(out, "  Run `aurion config init` to write a config file.")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath()
	if config.Exists(path) && !flagYes {
		return fmt.Errorf("config file %s already exists (use --yes to overwrite)", path)
	}
	if err := config.SaveTo(path, appCfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Wrote %s\n", path)
	return nil
}
