package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesToDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	log, closer, err := New(dir, "warn", now)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("dialog request rejected", "status", 502)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "lingchat-20260501.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "level=WARN")
	assert.Contains(t, string(data), "status=502")

	matched, err := filepath.Match(FilePattern, FileName(now))
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(t.TempDir(), "verbose", time.Now())
	assert.Error(t, err)
}
