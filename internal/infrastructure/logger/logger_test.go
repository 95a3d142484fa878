package logger

import (
	"context"
	"testing"

	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
	}{
		{"json to stdout", config.LogConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"console to stderr", config.LogConfig{Level: "debug", Format: "console", Output: "stderr"}},
		{"empty config falls back to defaults", config.LogConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		l, err := NewForEnvironment(env)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), "level %q", tt.input)
	}
}

func TestContextLogger(t *testing.T) {
	t.Run("round-trips through context", func(t *testing.T) {
		l := zap.NewNop()
		ctx := WithContext(context.Background(), l)
		assert.Equal(t, l, FromContext(ctx))
	})

	t.Run("missing logger yields nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request id enrichment", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), zap.NewNop(), "req-123")
		assert.NotNil(t, enriched)
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("user id enrichment", func(t *testing.T) {
		ctx, _ := WithUserID(context.Background(), zap.NewNop(), "user-456")
		assert.Equal(t, "user-456", GetUserID(ctx))
	})
}
