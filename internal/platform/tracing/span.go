// Package tracing starts child spans for request and job work.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var detached = trace.SpanFromContext(context.Background())

// Scope names the instrumentation library and decides which span names it
// records. A nil keep records every name.
type Scope struct {
	tracer trace.Tracer
	keep   func(name string) bool
}

func NewScope(name string, keep func(spanName string) bool) Scope {
	return Scope{tracer: otel.Tracer(name), keep: keep}
}

// Child starts a span only under a valid parent, so filtered routes and
// background jobs without a trace stay span-free. The returned span is always
// safe to End.
func (s Scope) Child(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, detached
	}
	if s.keep != nil && !s.keep(name) {
		return ctx, detached
	}
	if s.tracer == nil {
		return ctx, detached
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
