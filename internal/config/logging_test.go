package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("batch complete", "requests", 5)

	assert.Contains(t, stderr.String(), "batch complete")
	assert.Contains(t, stderr.String(), "requests=5")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "batch complete", entry["msg"])
	assert.Equal(t, 5.0, entry["requests"])
}

func TestSetupLoggerWithWritersHonorsLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Debug("noisy detail")
	logger.Info("routine note")
	assert.Empty(t, stderr.String())
	assert.Empty(t, file.String())

	logger.Warn("poll budget nearly exhausted")
	assert.Contains(t, stderr.String(), "poll budget nearly exhausted")
}
