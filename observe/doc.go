// Package observe instruments health check executions.
//
// It is a pure instrumentation library: it never runs checks itself. The
// health package calls Instrumentation.Wrap around each check and
// Instrumentation.ReportBuilt after each aggregate run. Every run of a check
// produces one span (health.check.<name>), increments the check counters,
// records a duration histogram sample and emits one structured log line.
package observe
