package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLoggerAndFromContext(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewJSONHandler(io.Discard, nil))

	ctx := WithLogger(context.Background(), custom)
	assert.Equal(t, custom, FromContext(ctx), "FromContext must return the stored logger")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	t.Parallel()

	got := FromContext(context.Background())
	assert.NotNil(t, got, "FromContext must never return nil")

	//nolint:staticcheck // Deliberately exercising the nil-context path.
	got = FromContext(nil)
	assert.NotNil(t, got, "FromContext must tolerate a nil context")
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	stored := slog.New(slog.NewJSONHandler(io.Discard, nil))
	fallback := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// Stored logger wins over the fallback
	ctx := WithLogger(context.Background(), stored)
	assert.Equal(t, stored, FromContextOrDefault(ctx, fallback))

	// Fallback applies when the context carries no logger
	assert.Equal(t, fallback, FromContextOrDefault(context.Background(), fallback))

	// Default applies when neither is available
	got := FromContextOrDefault(context.Background(), nil)
	assert.NotNil(t, got)
}

func TestLogCaptureContext(t *testing.T) {
	capture := NewLogCaptureContext(t)

	log := FromContext(capture.Context)
	log.Info("captured message", slog.String("component", "logger_test"))

	AssertLogContains(t, capture.Buffer, "captured message")
	AssertLogField(t, capture.Buffer, "component", "logger_test")
}
