package httpapi

import (
	"context"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/platform/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Only handler spans are recorded. Middleware and response helpers call
// startSpan too but stay inside the handler's span.
var apiSpans = tracing.NewScope("matchfeed/internal/interfaces/httpapi", isHandlerSpan)

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return apiSpans.Child(ctx, name)
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
