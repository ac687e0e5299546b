package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var noopSpan = trace.SpanFromContext(context.Background())

// Tracer starts child spans only. A context without a recording parent, such
// as a filtered /healthz request, gets a no-op span instead of a new root.
type Tracer struct {
	scope  string
	prefix string
}

// New returns a Tracer for the instrumentation scope. Span names outside
// prefix are ignored; an empty prefix accepts every name.
func New(scope, prefix string) Tracer {
	return Tracer{scope: scope, prefix: prefix}
}

func (t Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" || !strings.HasPrefix(name, t.prefix) {
		return ctx, noopSpan
	}
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return otel.Tracer(t.scope).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Fail marks span as failed with err. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
