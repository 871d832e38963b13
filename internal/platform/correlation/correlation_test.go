package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_Length(t *testing.T) {
	assert.Len(t, NewID(), 8)
}

func TestNewID_Unique(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		ids[NewID()] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestWithID_Roundtrip(t *testing.T) {
	ctx := WithID(context.Background(), "abc12345")
	id, ok := ID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc12345", id)
}

func TestID_Missing(t *testing.T) {
	id, ok := ID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestID_EmptyString(t *testing.T) {
	ctx := WithID(context.Background(), "")
	id, ok := ID(ctx)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func newCapturedLogger(buf *bytes.Buffer) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewHandler(inner))
}

func TestHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedLogger(&buf)

	ctx := WithID(context.Background(), "tick1234")
	logger.InfoContext(ctx, "Bounty posted", "channel_id", 301)

	output := buf.String()
	assert.Contains(t, output, "correlation_id=tick1234")
	assert.Contains(t, output, "channel_id=301")
	assert.Contains(t, output, "Bounty posted")
}

func TestHandler_SilentWithoutID(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedLogger(&buf)

	logger.InfoContext(context.Background(), "no tick context")

	assert.NotContains(t, buf.String(), "correlation_id")
}

func TestHandler_WithAttrsPreservesCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedLogger(&buf).With("component", "countdown")

	ctx := WithID(context.Background(), "attr1234")
	logger.InfoContext(ctx, "scheduled")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=attr1234")
	assert.Contains(t, output, "component=countdown")
}
