package usecase

import (
	"context"

	"github.com/riskibarqy/matchfeed/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseSpans = tracing.NewScope("matchfeed/internal/usecase", nil)

func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return usecaseSpans.Child(ctx, name, attrs...)
}
