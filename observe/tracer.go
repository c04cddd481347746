package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ViewMeta describes a cached view computation for telemetry purposes.
type ViewMeta struct {
	Key    string   // Cache key the view is stored under (optional)
	Entity string   // View entity, e.g. "dashboard" or "transcript" (required)
	Portal string   // Serving portal: "student", "faculty", "institution" (optional)
	Tags   []string // Invalidation tags attached to the view (optional)
}

// SpanName returns the deterministic span name for this view.
// Format: view.compute.<portal>.<entity> or view.compute.<entity>
func (m ViewMeta) SpanName() string {
	if m.Portal != "" {
		return "view.compute." + m.Portal + "." + m.Entity
	}
	return "view.compute." + m.Entity
}

// Validate checks the metadata carries the required entity.
func (m ViewMeta) Validate() error {
	if m.Entity == "" {
		return ErrMissingEntity
	}
	return nil
}

// ViewID returns the qualified view identifier, portal-scoped when a
// portal is set.
func (m ViewMeta) ViewID() string {
	if m.Portal != "" {
		return m.Portal + "." + m.Entity
	}
	return m.Entity
}

// Tracer wraps OpenTelemetry tracing with view-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a view computation.
	StartSpan(ctx context.Context, meta ViewMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with view metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ViewMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	attrs := []attribute.KeyValue{
		attribute.String("view.id", meta.ViewID()),
		attribute.String("view.entity", meta.Entity),
		attribute.Bool("view.error", false), // Updated in EndSpan if error
	}

	if meta.Portal != "" {
		attrs = append(attrs, attribute.String("view.portal", meta.Portal))
	}
	if meta.Key != "" {
		attrs = append(attrs, attribute.String("view.key", meta.Key))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("view.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("view.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ViewMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
