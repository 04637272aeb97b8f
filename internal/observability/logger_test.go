package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"WARN", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewLogger(LogConfig{Level: tt.level, Output: &bytes.Buffer{}})
			ctx := context.Background()
			assert.Equal(t, tt.wantDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, l.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.wantWarn, l.Enabled(ctx, slog.LevelWarn))
		})
	}
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	l.With("component", "catalog").Warn("unknown question type", "id", "q9", "type", "slider")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "unknown question type", rec["msg"])
	assert.Equal(t, "catalog", rec["component"])
	assert.Equal(t, "slider", rec["type"])
}

func TestLogger_WithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{Format: "json", Output: &buf})

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoContext(ctx, "season done")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", rec["span_id"])
}

func TestLogger_WithContextWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{Format: "json", Output: &buf})

	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	assert.NotPanics(t, func() { l.Error("dropped") })
}
