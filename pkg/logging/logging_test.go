package logging

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.SlogLevel())
	assert.Equal(t, slog.LevelError, LevelError.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogLevel(42).SlogLevel())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("Warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)
	defer Init(LevelInfo, io.Discard)

	Debug("Ingest", "hidden %d", 1)
	Info("Ingest", "hidden too")
	Warn("Ingest", "backlog at %d", 12000)
	Error("Format", errors.New("boom"), "formatter failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "backlog at 12000")
	assert.Contains(t, out, "subsystem=Ingest")
	assert.Contains(t, out, "error=boom")
}
