package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", input, got, want)
		}
	}
}

func TestLogger_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(LevelInfo, &buf).Named("reconcile")

	logger.InfoContext(context.Background(), "batch committed", "fixtures", 3, "error", errors.New("boom"))
	logger.Debug("dropped below level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := sonic.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "batch committed" || entry["logger"] != "reconcile" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry["fixtures"] != float64(3) {
		t.Fatalf("unexpected fixtures field: %+v", entry["fixtures"])
	}
	if entry["error"] != "boom" {
		t.Fatalf("unexpected error field: %+v", entry["error"])
	}
}

func TestLogger_NilReceiverUsesDefault(t *testing.T) {
	var logger *Logger
	logger.Info("does not panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger from nil receiver")
	}
}

func TestLogger_AddsTraceIDsFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(LevelInfo, &buf)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:  trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	logger.WarnContext(ctx, "provider slow", "fixture_id", 1035046)

	var entry map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" || entry["span_id"] != "00f067aa0ba902b7" {
		t.Fatalf("missing trace ids: %+v", entry)
	}
	if entry["level"] != "WARN" {
		t.Fatalf("unexpected level: %+v", entry["level"])
	}
}

func TestLogger_DanglingKeyLogsNull(t *testing.T) {
	var buf bytes.Buffer
	NewJSONWriter(LevelInfo, &buf).Info("odd fields", "fixture_id")

	var entry map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	value, ok := entry["fixture_id"]
	if !ok || value != nil {
		t.Fatalf("expected null fixture_id, got %+v", entry)
	}
}
