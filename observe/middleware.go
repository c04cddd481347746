package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/campuscache/cache"
)

// Middleware wraps view producers with observability (tracing, metrics,
// logging). The wrapped producer plugs straight into Cache.GetOrSet, so a
// cache miss carries a span, a duration histogram sample, and a structured
// log line for the computation it triggered.
//
// Contract:
//   - Concurrency: Wrap() returns a producer safe for concurrent use.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped producer are recorded and propagated unchanged.
//   - Ownership: Produced values are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a producer with tracing, metrics, and logging under the view's
// identity. A meta without an entity yields a producer that fails with
// ErrMissingEntity.
func (m *Middleware) Wrap(meta ViewMeta, fn cache.Producer) cache.Producer {
	if err := meta.Validate(); err != nil {
		return func(ctx context.Context) (any, error) {
			return nil, err
		}
	}

	return func(ctx context.Context) (any, error) {
		// Start span
		ctx, span := m.tracer.StartSpan(ctx, meta)

		// Record start time
		start := time.Now()

		// Compute the view
		result, err := fn(ctx)

		// Calculate duration
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		// Record metrics
		m.metrics.RecordCompute(ctx, meta, duration, err)

		// Log the computation
		viewLogger := m.logger.WithView(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			viewLogger.Error(ctx, "view computation failed", fields...)
		} else {
			viewLogger.Info(ctx, "view computation completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
