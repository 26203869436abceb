// Package config loads and saves the aurion configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/aurion/internal/model"
)

const appName = "aurion"

// DefaultPartners is the roster used until the config file names one.
var DefaultPartners = []string{
	"Minoka Induwara",
	"Minidu Oshan",
	"Chamidu Irosh",
	"Amila Sandeepa",
	"Dilhara Samaranayake",
	"Dilusha Madushan",
	"Kavishan Rathnayake",
}

// Config holds all aurion configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Roster     RosterConfig     `toml:"roster"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds storage settings.
type GeneralConfig struct {
	Database       string `toml:"database,omitempty"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
}

// RosterConfig lists the partners eligible for profit shares, in display order.
type RosterConfig struct {
	Partners []string `toml:"partners"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds the HTTP daemon settings.
type DaemonConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			PollIntervalMS: 1000,
		},
		Roster: RosterConfig{
			Partners: append([]string(nil), DefaultPartners...),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr: "127.0.0.1:8787",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// PartnerRoster returns the configured partners with blanks and duplicates removed.
func (c Config) PartnerRoster() model.Roster {
	seen := make(map[string]bool, len(c.Roster.Partners))
	roster := make(model.Roster, 0, len(c.Roster.Partners))
	for _, p := range c.Roster.Partners {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		roster = append(roster, p)
	}
	return roster
}

// PollInterval is how often the store watches for changes from other processes.
func (c Config) PollInterval() time.Duration {
	if c.General.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.General.PollIntervalMS) * time.Millisecond
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", appName)
}

// DatabasePath resolves the database file: AURION_DB, then the config file,
// then the data directory.
func DatabasePath(cfg Config) string {
	if p := os.Getenv("AURION_DB"); p != "" {
		return expandHome(p)
	}
	if cfg.General.Database != "" {
		return expandHome(cfg.General.Database)
	}
	return filepath.Join(DataDir(), appName+".db")
}

// LogPath is where the TUI writes its log while it owns the terminal.
func LogPath(cfg Config) string {
	if cfg.Log.File != "" {
		return expandHome(cfg.Log.File)
	}
	return filepath.Join(CacheDir(), appName+".log")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Load reads the default config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
// Keys missing from the file keep their default values.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
