package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds the run time of an operation.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a Timeout. A non-positive duration disables it and
// Execute runs the operation inline.
func NewTimeout(d time.Duration) *Timeout {
	return &Timeout{d: d}
}

// Duration returns the configured limit.
func (t *Timeout) Duration() time.Duration {
	return t.d
}

// Execute runs op under a derived deadline. The operation runs on its own
// goroutine so that a probe which never checks ctx cannot stall the caller;
// its result is discarded once the deadline has fired.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if t == nil || t.d <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
