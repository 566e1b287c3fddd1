package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the rhino tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("rhino")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDrainSpan starts a span covering one drain pass.
	// Returns the context with span and the span itself.
	StartDrainSpan(ctx context.Context, registryID string, pending int) (context.Context, trace.Span)

	// StartCallbackSpan starts a span for one cleanup callback.
	// The callback span should be a child of the drain span.
	StartCallbackSpan(ctx context.Context, registryID string, handleID uint64) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartDrainSpan starts a span covering one drain pass.
func (m *otelSpanManager) StartDrainSpan(ctx context.Context, registryID string, pending int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "rhino.drain",
		trace.WithAttributes(
			attribute.String("registry.id", registryID),
			attribute.Int("drain.pending", pending),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartCallbackSpan starts a span for one cleanup callback.
func (m *otelSpanManager) StartCallbackSpan(ctx context.Context, registryID string, handleID uint64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "rhino.callback",
		trace.WithAttributes(
			attribute.String("registry.id", registryID),
			attribute.Int64("handle.id", int64(handleID)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartDrainSpan starts a span covering one drain pass.
// Uses the global OTel tracer.
func StartDrainSpan(ctx context.Context, registryID string, pending int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "rhino.drain",
		trace.WithAttributes(
			attribute.String("registry.id", registryID),
			attribute.Int("drain.pending", pending),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartCallbackSpan starts a span for one cleanup callback.
// Uses the global OTel tracer.
func StartCallbackSpan(ctx context.Context, registryID string, handleID uint64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "rhino.callback",
		trace.WithAttributes(
			attribute.String("registry.id", registryID),
			attribute.Int64("handle.id", int64(handleID)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
