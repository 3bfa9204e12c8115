package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/wirechan/codec"
	"github.com/wippyai/wirechan/internal/config"
)

func restoreLoggers(t *testing.T) {
	t.Helper()
	prevCodec := codec.Logger()
	prevGlobal := zap.L()
	t.Cleanup(func() {
		codec.SetLogger(prevCodec)
		zap.ReplaceGlobals(prevGlobal)
	})
}

func TestSetupLogger_File(t *testing.T) {
	restoreLoggers(t)
	path := filepath.Join(t.TempDir(), "logs", "inspect.log")

	logger, err := SetupLogger(config.LogConfig{
		Level:   "info",
		Format:  "json",
		Outputs: []string{path},
	})
	require.NoError(t, err)
	assert.Same(t, logger, codec.Logger())

	logger.Debug("hidden")
	logger.Info("shown", zap.Int("n", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(3), entry["n"])
}

func TestSetupLogger_Rotation(t *testing.T) {
	restoreLoggers(t)
	dir := t.TempDir()
	rotated := filepath.Join(dir, "rotated.log")

	logger, err := SetupLogger(config.LogConfig{
		Level:   "warning",
		Outputs: []string{filepath.Join(dir, "ignored.log")},
		Rotation: config.RotationConfig{
			Enable:   true,
			Filename: rotated,
		},
	})
	require.NoError(t, err)
	logger.Warn("rotated entry")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotated entry")
}

func TestSetupLogger_RotationKeepsLaterOutputs(t *testing.T) {
	restoreLoggers(t)
	dir := t.TempDir()
	rotated := filepath.Join(dir, "rotated.log")
	second := filepath.Join(dir, "second.log")

	logger, err := SetupLogger(config.LogConfig{
		Level:   "info",
		Outputs: []string{filepath.Join(dir, "first.log"), second},
		Rotation: config.RotationConfig{
			Enable:   true,
			Filename: rotated,
		},
	})
	require.NoError(t, err)
	logger.Info("fanned out")
	require.NoError(t, logger.Sync())

	for _, path := range []string{rotated, second} {
		data, err := os.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, 1, strings.Count(string(data), "fanned out"), path)
	}
	assert.NoFileExists(t, filepath.Join(dir, "first.log"))
}

func TestSetupLogger_BadLevel(t *testing.T) {
	restoreLoggers(t)
	_, err := SetupLogger(config.LogConfig{Level: "loud", Outputs: []string{"stderr"}})
	assert.Error(t, err)
}
