package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(err)
	require.Equal(Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(Save(path, Config{RunAtStartup: true}))

	cfg, err := Load(path)
	require.NoError(err)
	require.True(cfg.RunAtStartup)
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte("run_at_startup: [not a bool"), 0o644))

	cfg, err := Load(path)
	require.Error(err)
	require.Equal(Default(), cfg)
}
