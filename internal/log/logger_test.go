package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/log"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := log.New(log.Config{Level: "debug", Format: log.FormatJSON, Output: &buf})
	require.NoError(t, err)

	log.WithComponent(logger, log.ComponentLedger).Debug("transaction added", "amount", "10.00")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "transaction added", record["msg"])
	assert.Equal(t, "ledger", record[log.FieldComponent])
	assert.Equal(t, "10.00", record["amount"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	logger, err := log.New(log.Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Invalid(t *testing.T) {
	_, err := log.New(log.Config{Level: "loud", Output: &bytes.Buffer{}})
	assert.Error(t, err)

	_, err = log.New(log.Config{Format: "xml", Output: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	for in, want := range tests {
		got, err := log.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
