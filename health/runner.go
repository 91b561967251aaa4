package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/healthkit/observe"
	"github.com/jonwraymond/healthkit/resilience"
)

// Run executes every registered check once, sequentially and in
// registration order, and returns one result per check in that order.
// Run never fails: errors and panics become failed results.
func (r *Registry) Run(ctx context.Context) []CheckResult {
	entries, _ := r.snapshot()
	return r.runEntries(ctx, entries)
}

func (r *Registry) runEntries(ctx context.Context, entries []*entry) []CheckResult {
	results := make([]CheckResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, r.execute(ctx, e))
	}
	return results
}

// RunOne executes the check registered under name.
func (r *Registry) RunOne(ctx context.Context, name string) (CheckResult, error) {
	e, ok := r.lookup(name)
	if !ok {
		return CheckResult{}, fmt.Errorf("%w: %q", ErrCheckNotFound, name)
	}
	return r.execute(ctx, e), nil
}

func (r *Registry) execute(ctx context.Context, e *entry) CheckResult {
	run := func(ctx context.Context) error {
		return invoke(ctx, e.checker)
	}

	if e.timeout > 0 {
		t := resilience.NewTimeout(e.timeout)
		inner := run
		run = func(ctx context.Context) error {
			err := t.Execute(ctx, inner)
			if errors.Is(err, resilience.ErrTimeout) {
				return fmt.Errorf("%w after %s", ErrCheckTimeout, e.timeout)
			}
			return err
		}
	}

	if e.breaker != nil {
		inner := run
		run = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	if r.instr != nil {
		run = r.instr.Wrap(e.name, observe.CheckFunc(run))
	}

	start := time.Now()
	err := run(ctx)
	result := CheckResult{
		Name:     e.name,
		Passed:   err == nil,
		Duration: time.Since(start),
		Optional: e.optional,
	}
	if err != nil {
		result.Error = err.Error()
		r.logFailure(ctx, result, err)
	}
	return result
}

func (r *Registry) logFailure(ctx context.Context, result CheckResult, err error) {
	fields := []observe.Field{
		{Key: "check", Value: result.Name},
		{Key: "error", Value: result.Error},
		{Key: "duration_ms", Value: float64(result.Duration) / float64(time.Millisecond)},
		{Key: "optional", Value: result.Optional},
	}
	if errors.Is(err, ErrCheckPanicked) {
		r.logger.Error(ctx, "health check panicked", fields...)
		return
	}
	r.logger.Warn(ctx, "health check failed", fields...)
}
