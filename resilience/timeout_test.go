package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeout_Disabled(t *testing.T) {
	timeout := NewTimeout(0)

	called := false
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		if _, ok := ctx.Deadline(); ok {
			t.Error("disabled timeout should not set a deadline")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !called {
		t.Error("operation was not executed")
	}
}

func TestTimeout_NilReceiver(t *testing.T) {
	var timeout *Timeout

	err := timeout.Execute(context.Background(), func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("Execute() on nil Timeout error = %v", err)
	}
}

func TestTimeout_PassesThroughError(t *testing.T) {
	timeout := NewTimeout(time.Second)
	testErr := errors.New("probe failed")

	err := timeout.Execute(context.Background(), func(context.Context) error {
		return testErr
	})
	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestTimeout_Exceeded(t *testing.T) {
	timeout := NewTimeout(20 * time.Millisecond)

	start := time.Now()
	err := timeout.Execute(context.Background(), func(context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("Execute() returned after %v, expected prompt return", elapsed)
	}
}

func TestTimeout_ParentCancelled(t *testing.T) {
	timeout := NewTimeout(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := timeout.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
