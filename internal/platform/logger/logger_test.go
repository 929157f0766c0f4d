package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/applyflow/applyflow-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{name: "debug_level", level: "debug"},
		{name: "info_level", level: "info"},
		{name: "warn_level", level: "warn"},
		{name: "error_level", level: "error"},
		{name: "mixed_case_level", level: "Debug"},
		{name: "empty_level_defaults_to_info", level: ""},
		{name: "invalid_level_defaults_to_info", level: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.Setup(logger.LoggerConfig{Level: tt.level})
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, log, slog.Default())
		})
	}
}

func TestSetupLevelFiltering(t *testing.T) {
	log, err := logger.Setup(logger.LoggerConfig{Level: "warn"})
	require.NoError(t, err)

	ctx := context.Background()
	assert.False(t, log.Enabled(ctx, slog.LevelDebug))
	assert.False(t, log.Enabled(ctx, slog.LevelInfo))
	assert.True(t, log.Enabled(ctx, slog.LevelWarn))
	assert.True(t, log.Enabled(ctx, slog.LevelError))
}

func TestWithLogger(t *testing.T) {
	t.Run("stores_logger_in_context", func(t *testing.T) {
		custom := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := logger.WithLogger(context.Background(), custom)

		assert.Equal(t, custom, logger.FromContext(ctx))
	})

	t.Run("nil_logger_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.WithLogger(context.Background(), nil)
		})
	})
}

func TestFromContextOrDefault(t *testing.T) {
	def := slog.Default()
	custom := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{
			name:     "nil_context_returns_default",
			ctx:      nil,
			expected: def,
		},
		{
			name:     "context_without_logger_returns_default",
			ctx:      context.Background(),
			expected: def,
		},
		{
			name:     "context_with_logger_returns_context_logger",
			ctx:      logger.WithLogger(context.Background(), custom),
			expected: custom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, logger.FromContextOrDefault(tt.ctx, def))
		})
	}
}
