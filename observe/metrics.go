package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricCheckTotal    = "health.check.total"
	MetricCheckFailures = "health.check.failures"
	MetricCheckDuration = "health.check.duration_ms"
	MetricReportTotal   = "health.report.total"
)

// Metrics records check and report metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordCheck(ctx context.Context, name string, duration time.Duration, err error)
	RecordReport(ctx context.Context, status string)
}

type metricsImpl struct {
	total    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	reports  metric.Int64Counter
}

// NewMetrics registers the health instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	total, err := meter.Int64Counter(MetricCheckTotal,
		metric.WithDescription("Number of health check executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(MetricCheckFailures,
		metric.WithDescription("Number of failed health check executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(MetricCheckDuration,
		metric.WithDescription("Health check execution time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	reports, err := meter.Int64Counter(MetricReportTotal,
		metric.WithDescription("Number of aggregated health reports by status"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		total:    total,
		failures: failures,
		duration: duration,
		reports:  reports,
	}, nil
}

func (m *metricsImpl) RecordCheck(ctx context.Context, name string, duration time.Duration, err error) {
	opt := metric.WithAttributes(AttrCheckName.String(name))

	m.total.Add(ctx, 1, opt)
	if err != nil {
		m.failures.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordReport(ctx context.Context, status string) {
	m.reports.Add(ctx, 1, metric.WithAttributes(AttrStatus.String(status)))
}
