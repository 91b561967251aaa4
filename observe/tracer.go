package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanPrefix is prepended to the check name to form the span name.
const SpanPrefix = "health.check."

// Attribute keys shared by spans and metrics.
const (
	AttrCheckName   = attribute.Key("health.check.name")
	AttrCheckPassed = attribute.Key("health.check.passed")
	AttrStatus      = attribute.Key("health.status")
)

// Tracer opens one span per check execution.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCheck is best-effort and must not panic.
type Tracer interface {
	StartCheck(ctx context.Context, name string) (context.Context, trace.Span)
	EndCheck(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartCheck(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanPrefix+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrCheckName.String(name)),
	)
}

func (t *tracerImpl) EndCheck(span trace.Span, err error) {
	span.SetAttributes(AttrCheckPassed.Bool(err == nil))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
