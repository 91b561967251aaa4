package observe

import (
	"context"
	"time"
)

// CheckFunc is the shape of a single check execution.
type CheckFunc func(ctx context.Context) error

// Instrumentation wraps check executions with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a function safe for concurrent use.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Instrumentation struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumentation creates an Instrumentation from its parts.
func NewInstrumentation(tracer Tracer, metrics Metrics, logger Logger) *Instrumentation {
	if logger == nil {
		logger = NopLogger()
	}
	return &Instrumentation{tracer: tracer, metrics: metrics, logger: logger}
}

// InstrumentationFromObserver builds an Instrumentation on top of obs.
func InstrumentationFromObserver(obs Observer) (*Instrumentation, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewInstrumentation(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the logger used for check log lines.
func (i *Instrumentation) Logger() Logger {
	return i.logger
}

// Wrap instruments fn as the check called name.
func (i *Instrumentation) Wrap(name string, fn CheckFunc) CheckFunc {
	return func(ctx context.Context) error {
		ctx, span := i.tracer.StartCheck(ctx, name)
		start := time.Now()

		err := fn(ctx)

		duration := time.Since(start)
		i.tracer.EndCheck(span, err)
		i.metrics.RecordCheck(ctx, name, duration, err)

		fields := []Field{
			{Key: "check", Value: name},
			{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			i.logger.Debug(ctx, "health check failed", fields...)
		} else {
			i.logger.Debug(ctx, "health check passed", fields...)
		}

		return err
	}
}

// ReportBuilt records one aggregated report.
func (i *Instrumentation) ReportBuilt(ctx context.Context, status string, failed int) {
	i.metrics.RecordReport(ctx, status)
	i.logger.Debug(ctx, "health report built",
		Field{Key: "status", Value: status},
		Field{Key: "failed", Value: failed},
	)
}
