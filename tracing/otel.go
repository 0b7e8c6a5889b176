package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope every span in this stack reports
// under, so a collector can group them regardless of which package started
// the span.
const tracerName = "github.com/sarchlab/enbstack"

// Tracer returns the process-wide trace.Tracer from otel's global
// TracerProvider. This module installs no TracerProvider, so spans go to
// whatever provider the process has set (otel's no-op default otherwise);
// packages that want spans call this instead of holding their own tracer
// reference.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span named name under ctx, tagged with rnti — nearly
// every control-plane operation (RRC transition, handover step, scheduler
// decision) is scoped to one user, so the RNTI is attached uniformly
// rather than left to each call site to remember.
func StartSpan(ctx context.Context, name string, rnti uint16) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attribute.Int64("rnti", int64(rnti))))
}
