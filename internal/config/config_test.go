package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/winescan/internal/scan"
)

// Tests here use t.Setenv and therefore do not run in parallel.

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, scan.DefaultTimings(), cfg.Scan)
	assert.Empty(t, cfg.Catalog)
	assert.Equal(t, defaultStorage, cfg.StorageFile)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "winescan")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	doc := "scan:\n  detect_delay: 200ms\n  analyze_delay: 300ms\n  found_delay: 1s\n  progress_step: 25\ncatalog: /tmp/wines.yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0o600))

	t.Setenv("WINESCAN_SCAN_FOUND_DELAY", "50ms")
	t.Setenv("WINESCAN_STORAGE_FILE", "/tmp/profile.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, cfg.Scan.DetectDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Scan.AnalyzeDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Scan.FoundDelay)
	assert.Equal(t, 150*time.Millisecond, cfg.Scan.TickInterval)
	assert.Equal(t, 25, cfg.Scan.ProgressStep)
	assert.Equal(t, "/tmp/wines.yaml", cfg.Catalog)
	assert.Equal(t, "/tmp/profile.json", cfg.StorageFile)
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  tick_interval: 10ms\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, cfg.Scan.TickInterval)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsInvalidTimings(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  progress_step: 0\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("scan:\n  tick_interval: 0s\n"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandTilde("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a", "b"), got)

	got, err = ExpandTilde("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", got)
}
