package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aurion/internal/model"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Len(t, cfg.PartnerRoster(), 7)
	assert.Equal(t, "Minoka Induwara", cfg.PartnerRoster()[0])
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[roster]
partners = ["A", " B ", "", "A"]

[daemon]
addr = ":9000"
`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, model.Roster{"A", "B"}, cfg.PartnerRoster())
	assert.Equal(t, ":9000", cfg.Daemon.Addr)
	assert.Equal(t, "flexoki-dark", cfg.Appearance.Theme)
	assert.Equal(t, time.Second, cfg.PollInterval())
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.General.PollIntervalMS = 250
	cfg.Log.Level = "debug"

	require.NoError(t, SaveTo(path, cfg))
	assert.True(t, Exists(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, 250*time.Millisecond, got.PollInterval())
}

func TestDatabasePathPrecedence(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("AURION_DB", "")

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/data", "aurion", "aurion.db"), DatabasePath(cfg))

	cfg.General.Database = "/srv/books.db"
	assert.Equal(t, "/srv/books.db", DatabasePath(cfg))

	t.Setenv("AURION_DB", "/tmp/override.db")
	assert.Equal(t, "/tmp/override.db", DatabasePath(cfg))
}

func TestLogPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/cache")
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/cache", "aurion", "aurion.log"), LogPath(cfg))

	cfg.Log.File = "/var/log/aurion.log"
	assert.Equal(t, "/var/log/aurion.log", LogPath(cfg))
}
