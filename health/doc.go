// Package health registers named health checks, runs them, and turns the
// results into a report suitable for a /health endpoint.
//
// # Core Concepts
//
// A Checker is anything that can report whether one dependency or subsystem
// is usable: a nil error is a pass, a non-nil error or a panic is a failure.
// CheckFunc and BoolFunc adapt plain functions.
//
// A Registry holds checks under unique names and runs them sequentially in
// registration order. Failures never escape Run: each one becomes a failed
// CheckResult carrying the error message, and the remaining checks still run.
//
// BuildReport reduces results to a Report whose Status is "ok" only when
// every check passed. A failing check registered with Optional() degrades the
// report instead of failing it.
//
// # Basic Usage
//
//	reg := health.NewRegistry(health.WithTimeout(2 * time.Second))
//
//	_ = reg.Add("postgres", checks.Postgres(pool))
//	_ = reg.AddBool("migrations", migrator.Done)
//	_ = reg.Add("search", checks.HTTPGet(searchURL), health.Optional())
//
//	report := reg.Report(ctx)
//	if !report.Healthy() {
//	    log.Printf("unhealthy: %v", report.Failed())
//	}
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, reg)
//
// registers /health (full report, 200 or 503), /health/live (always 200),
// /health/ready (same as /health) and /health/checks/{name}. The ginhealth
// and echohealth packages expose the same report through those frameworks.
package health
