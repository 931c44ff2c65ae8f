package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("filters below configured level", func(t *testing.T) {
		buf := &logger.TestLogBuffer{}
		l, err := logger.Setup(logger.LoggerConfig{Level: "warn", Output: buf})
		require.NoError(t, err)
		require.NotNil(t, l)

		l.Info("hidden")
		l.Warn("shown", "key", "value")

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "shown", entries[0]["msg"])
		assert.Equal(t, "value", entries[0]["key"])
	})

	t.Run("installs default logger", func(t *testing.T) {
		buf := &logger.TestLogBuffer{}
		_, err := logger.Setup(logger.LoggerConfig{Level: "debug", Output: buf})
		require.NoError(t, err)

		slog.Debug("via default")
		logger.AssertLogContains(t, buf, "via default")
	})

	t.Run("invalid level falls back to info with a warning", func(t *testing.T) {
		buf := &logger.TestLogBuffer{}
		l, err := logger.Setup(logger.LoggerConfig{Level: "loud", Output: buf})
		require.NoError(t, err)

		l.Debug("not emitted")
		logger.AssertLogContains(t, buf, "invalid log level configured")
		logger.AssertLogNotContains(t, buf, "not emitted")
	})
}

func TestContextLogger(t *testing.T) {
	base, buf := logger.NewTestLogger(t)
	scoped := base.With("trace_id", "abc123")

	ctx := logger.WithLogger(context.Background(), scoped)

	got, ok := logger.FromContext(ctx)
	require.True(t, ok)
	got.Info("request handled")
	logger.AssertLogContains(t, buf, `"trace_id":"abc123"`)

	_, ok = logger.FromContext(context.Background())
	assert.False(t, ok)

	assert.Same(t, scoped, logger.FromContextOrDefault(ctx, base))
	assert.Same(t, base, logger.FromContextOrDefault(context.Background(), base))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))

	assert.Equal(t, context.Background(), logger.WithLogger(context.Background(), nil))
}
