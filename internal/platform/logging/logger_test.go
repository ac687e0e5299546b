package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_InfoContextCarriesRequestID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	ctx := WithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "match created", "match_id", int64(42), "cause", errors.New("none"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id: %v", fields["request_id"])
	}
	if fields["match_id"] != int64(42) {
		t.Fatalf("unexpected match_id: %v", fields["match_id"])
	}
	if fields["cause"] != "none" {
		t.Fatalf("unexpected cause: %v", fields["cause"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core)).With("component", "test")

	logger.Info("dropped")
	logger.Warn("kept", "odd")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "test" {
		t.Fatalf("expected With fields to carry over, got %v", fields)
	}
	if _, ok := fields["odd"]; !ok {
		t.Fatalf("expected dangling key to be logged, got %v", fields)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestLogger_TeeWritesToEveryCore(t *testing.T) {
	t.Parallel()

	primary, primaryLogs := observer.New(zapcore.InfoLevel)
	extra, extraLogs := observer.New(zapcore.ErrorLevel)
	logger := FromZap(zap.New(primary)).Tee(extra)

	logger.Info("info only")
	logger.Error("both")

	if got := primaryLogs.Len(); got != 2 {
		t.Fatalf("expected two entries on primary core, got %d", got)
	}
	if got := extraLogs.Len(); got != 1 || extraLogs.All()[0].Message != "both" {
		t.Fatalf("expected only the error entry on extra core, got %+v", extraLogs.All())
	}
}

func TestLogger_NamedAndZapFieldPassthrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).Named("keycloak")

	logger.Info("token verified", "ignored", zap.Int("attempt", 2))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "keycloak" {
		t.Fatalf("unexpected logger name: %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["attempt"] != int64(2) {
		t.Fatalf("expected zap field passed through, got %v", entries[0].ContextMap())
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "list matches failed")

	fields := logs.All()[0].ContextMap()
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("expected trace fields, got %v", fields)
	}
}
