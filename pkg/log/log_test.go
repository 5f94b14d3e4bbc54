package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/levenlabs/go-llog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLogger(t *testing.T) {
	ctx := context.Background()

	// Test Ctx without a logger in the context
	l1 := Ctx(ctx)
	require.NotNil(t, l1, "Ctx returned nil instead of default logger")
	assert.Equal(t, defaultLogger, l1, "Ctx should return defaultLogger")

	customLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	require.NotEqual(t, defaultLogger, customLogger, "Failed to create a distinct custom logger for testing")

	ctxWithLogger := With(ctx, customLogger)
	l2 := Ctx(ctxWithLogger)
	require.NotNil(t, l2, "Ctx returned nil, expected custom logger")
	assert.Equal(t, customLogger, l2, "Ctx should return customLogger")
}

func TestFromLLog(t *testing.T) {
	tests := []struct {
		in   llog.Level
		want slog.Level
	}{
		{llog.DebugLevel, slog.LevelDebug},
		{llog.InfoLevel, slog.LevelInfo},
		{llog.WarnLevel, slog.LevelWarn},
		{llog.ErrorLevel, slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, err := FromLLog(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetOutput(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() {
		defaultLogger = prev
		slog.SetDefault(prev)
		SetDefaultLogLevel(slog.LevelInfo)
	})

	var buf bytes.Buffer
	SetOutput(&buf)
	SetDefaultLogLevel(slog.LevelWarn)

	ctx := context.Background()
	Ctx(ctx).InfoContext(ctx, "dropped")
	assert.Zero(t, buf.Len(), "info should be filtered at warn level")

	Ctx(ctx).WarnContext(ctx, "kept", slog.String("scenario", "coast"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "coast", line["scenario"])
	assert.Contains(t, line, "source")
}
