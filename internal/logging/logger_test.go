package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/harrylevesque/campusclinic/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clinic.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, path, false)
	require.NoError(t, err)

	logger.Info("request sent")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "request sent")
	assert.NotContains(t, string(data), "hidden")
}

func TestVerboseEnablesDebug(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "error"}, "", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, "", false)
	assert.Error(t, err)
}
