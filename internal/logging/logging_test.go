package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestJSONToConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "quiverx.log")

	logger, closeFn := NewWithWriter(&buf, config.LogConfig{Format: "json", File: path, MaxSizeMB: 1}, "info")
	logger.Debug("hidden")
	logger.Info("refreshed", slog.Int("opportunities", 5))
	require.NoError(t, closeFn())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "refreshed", line["msg"])
	assert.EqualValues(t, 5, line["opportunities"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"refreshed"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewWithWriter(&buf, config.LogConfig{Format: "text"}, "debug")
	logger.Debug("debug-line")
	assert.Contains(t, buf.String(), "msg=debug-line")
}
