package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestTracer_StartsChildSpansOnly(t *testing.T) {
	recorder := installRecorder(t)
	tracer := New("test", "httpapi.Handler.")

	_, orphan := tracer.Start(context.Background(), "httpapi.Handler.ListMatches")
	orphan.End()
	if got := len(recorder.Ended()); got != 0 {
		t.Fatalf("expected no span without a parent, got %d", got)
	}

	ctx, parent := otel.Tracer("test").Start(context.Background(), "my-bet-app-http")
	_, child := tracer.Start(ctx, "httpapi.Handler.ListMatches")
	child.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected parent and child spans, got %d", len(ended))
	}
	if ended[0].Name() != "httpapi.Handler.ListMatches" {
		t.Fatalf("unexpected child span name: %q", ended[0].Name())
	}
	if ended[0].Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Fatalf("expected child span to reference the request span")
	}
}

func TestTracer_FiltersByPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.ListMatches", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
		{name: "blank", in: "  ", want: false},
	}

	recorder := installRecorder(t)
	tracer := New("test", "httpapi.Handler.")
	ctx, parent := otel.Tracer("test").Start(context.Background(), "request")
	defer parent.End()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(recorder.Ended())
			_, span := tracer.Start(ctx, tt.in)
			span.End()
			got := len(recorder.Ended()) > before
			if got != tt.want {
				t.Fatalf("Start(%q) recorded=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFail_RecordsErrorStatus(t *testing.T) {
	recorder := installRecorder(t)

	_, span := otel.Tracer("test").Start(context.Background(), "usecase.MatchService.Create")
	Fail(span, errors.New("duplicate fixture"))
	Fail(span, nil)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error || ended[0].Status().Description != "duplicate fixture" {
		t.Fatalf("unexpected status: %+v", ended[0].Status())
	}
	if len(ended[0].Events()) != 1 {
		t.Fatalf("expected one recorded error event, got %d", len(ended[0].Events()))
	}
}
