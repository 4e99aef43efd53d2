package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "sagipero-admin", "info")

	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sagipero-admin", entry["service"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "", "warn")

	logger.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "", "verbose")

	logger.Debug().Msg("dropped")
	assert.Empty(t, buf.String())

	logger.Info().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestConsoleWriter_HumanReadable(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(zerolog.ConsoleWriter{Out: &buf, NoColor: true}, "", "warn")

	logger.Warn().Str("component", "realtime").Msg("reconnecting")

	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "reconnecting")
	assert.Contains(t, buf.String(), "component=realtime")
}
