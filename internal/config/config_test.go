package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTimeout, "")
	t.Setenv(EnvLogLevel, "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, 30*24*time.Hour, cfg.GetExpiryWindow())
	assert.Equal(t, 10, cfg.Display.LowStockThreshold)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API, cfg.API)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://clinic.example.edu/"
	cfg.API.Timeout = "5s"
	cfg.Display.LowStockThreshold = 3
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://clinic.example.edu", loaded.API.BaseURL)
	assert.Equal(t, 5*time.Second, loaded.GetTimeout())
	assert.Equal(t, 3, loaded.Display.LowStockThreshold)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://10.0.0.5:8000")
	t.Setenv(EnvTimeout, "2s")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.GetTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: ftp://clinic\n"), 0600))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("display:\n  output: xml\n"), 0600))
	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("api: [\n"), 0600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestPathsResolveAgainstHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(home, "session"), cfg.SessionDir())
	assert.Equal(t, filepath.Join(home, "session.key"), cfg.SessionKeyFile())
	assert.Equal(t, "", cfg.CADir())
	assert.Equal(t, filepath.Join(home, "config.yaml"), DefaultPath())

	cfg.Logging.File = "/var/log/clinic.log"
	assert.Equal(t, "/var/log/clinic.log", cfg.LogFile())
}
