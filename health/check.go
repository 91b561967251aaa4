package health

import (
	"context"
	"fmt"
)

// Checker probes one dependency or subsystem.
//
// Contract:
// - Check returns nil when healthy and a descriptive error otherwise.
// - Check should return promptly once ctx is done.
// - Panics are recovered by the Registry and reported as failures.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// Check calls f.
func (f CheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// BoolFunc adapts a predicate to Checker; false reports ErrCheckFailed.
type BoolFunc func() bool

// Check calls f.
func (f BoolFunc) Check(context.Context) error {
	if f() {
		return nil
	}
	return ErrCheckFailed
}

// invoke runs c, converting a panic into an error.
func invoke(ctx context.Context, c Checker) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", ErrCheckPanicked, v)
		}
	}()
	return c.Check(ctx)
}
