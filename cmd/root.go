// Package cmd implements the aurion CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/aurion/internal/config"
	"github.com/theirongolddev/aurion/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagDB     string
	flagQuiet  bool
	flagJSON   bool
	flagYes    bool
)

// appCfg is the effective configuration, loaded before any command runs.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "aurion",
	Short: "Partnership finance tracker",
	Long: "Track project revenue, costs, work attributions and partner expenses,\n" +
		"and split each project's profit among the partners.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database file (overrides config and AURION_DB)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip delete confirmation")
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

func loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(configPath())
	if err != nil {
		return err
	}
	appCfg = cfg
	setupLogging(os.Stderr)
	return nil
}

// setupLogging points the global zerolog logger at w with the configured level.
func setupLogging(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(appCfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if flagQuiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	out := w
	if f, ok := w.(*os.File); ok && (f == os.Stderr || f == os.Stdout) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func databasePath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.DatabasePath(appCfg)
}

func openStore() (*store.Store, error) {
	path := databasePath()
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("database opened")
	return st, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
