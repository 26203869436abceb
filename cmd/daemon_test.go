package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeFileRoundTrip(t *testing.T) {
	rf := runtimeFile{path: filepath.Join(t.TempDir(), "run", "auriond.json")}

	_, ok := rf.live()
	assert.False(t, ok, "missing file means not running")

	want := daemonRuntime{
		PID:       os.Getpid(),
		Addr:      "127.0.0.1:9999",
		StartedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Database:  "/tmp/aurion.db",
	}
	require.NoError(t, rf.write(want))

	got, ok := rf.live()
	require.True(t, ok)
	assert.Equal(t, want.PID, got.PID)
	assert.Equal(t, want.Addr, got.Addr)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))

	rf.remove()
	_, err := rf.read()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRuntimeFileRejectsGarbage(t *testing.T) {
	rf := runtimeFile{path: filepath.Join(t.TempDir(), "auriond.json")}
	require.NoError(t, os.WriteFile(rf.path, []byte("12345\n"), 0o600))

	_, err := rf.read()
	assert.Error(t, err)
	_, ok := rf.live()
	assert.False(t, ok)
}
