// Package resilience guards individual health checks.
//
// Two patterns are provided, both operating on func(context.Context) error:
//
//   - Timeout bounds how long a single check may run. A check that ignores
//     its context is abandoned and reported as timed out.
//
//   - CircuitBreaker stops invoking a dependency probe after it has failed
//     a number of times in a row, and lets one probe through again once a
//     cooldown has passed.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures: 3,
//	    Cooldown:    time.Minute,
//	})
//
//	t := resilience.NewTimeout(2 * time.Second)
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return t.Execute(ctx, pingDatabase)
//	})
package resilience
