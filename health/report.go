package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Status is the aggregate health of a Report.
type Status string

const (
	// StatusOK means every check passed.
	StatusOK Status = "ok"
	// StatusDegraded means only optional checks failed.
	StatusDegraded Status = "degraded"
	// StatusError means at least one required check failed.
	StatusError Status = "error"
)

// Report is the aggregated outcome of one run. Treat it as immutable.
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`

	summary bool
}

// BuildReport aggregates results. The status is StatusOK iff every result
// passed; an empty result set is StatusOK.
func BuildReport(results []CheckResult) Report {
	status := StatusOK
	for _, res := range results {
		if res.Passed {
			continue
		}
		if !res.Optional {
			status = StatusError
			break
		}
		status = StatusDegraded
	}

	checks := make([]CheckResult, len(results))
	copy(checks, results)

	return Report{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}

// HTTPStatus maps the report to 200 (ok, degraded) or 503 (error).
func (r Report) HTTPStatus() int {
	if r.Status == StatusError {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// Failed returns the failed results in run order.
func (r Report) Failed() []CheckResult {
	var failed []CheckResult
	for _, res := range r.Checks {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Summary returns a copy without per-check results. It is what
// unauthenticated callers see when a handler has an Authenticator.
func (r Report) Summary() Report {
	return Report{Status: r.Status, Timestamp: r.Timestamp, summary: true}
}

// IsSummary reports whether r was produced by Summary.
func (r Report) IsSummary() bool {
	return r.summary
}

// MarshalJSON always emits "checks" (as [] when empty) except for summaries.
func (r Report) MarshalJSON() ([]byte, error) {
	out := struct {
		Status    Status         `json:"status"`
		Timestamp string         `json:"timestamp"`
		Checks    *[]CheckResult `json:"checks,omitempty"`
	}{
		Status:    r.Status,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
	if !r.summary {
		checks := r.Checks
		if checks == nil {
			checks = []CheckResult{}
		}
		out.Checks = &checks
	}
	return json.Marshal(out)
}

// Report runs every check and aggregates the results. Concurrent callers
// share a single in-flight run. That run is detached from the callers'
// contexts and bounded by the registry's report timeout. A caller whose ctx
// ends first gets every check marked failed with ctx's error; that report
// is neither shared nor cached.
//
// With a report cache configured, a fresh cached report is returned without
// running anything.
func (r *Registry) Report(ctx context.Context) Report {
	if report, ok := r.cachedReport(ctx); ok {
		return report
	}

	ch := r.flight.DoChan(reportCacheKey, func() (any, error) {
		return r.buildReport(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(Report)
	case <-ctx.Done():
		entries, _ := r.snapshot()
		return abandonedReport(entries, ctx.Err())
	}
}

func (r *Registry) buildReport(ctx context.Context) Report {
	if r.reportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.reportTimeout)
		defer cancel()
	}

	entries, gen := r.snapshot()
	report := BuildReport(r.runEntries(ctx, entries))
	if r.instr != nil {
		r.instr.ReportBuilt(ctx, string(report.Status), len(report.Failed()))
	}
	// A run cut short by the report timeout is not cached.
	if ctx.Err() == nil {
		r.storeReport(ctx, report, gen)
	}
	return report
}

func abandonedReport(entries []*entry, err error) Report {
	results := make([]CheckResult, len(entries))
	for i, e := range entries {
		results[i] = CheckResult{Name: e.name, Error: err.Error(), Optional: e.optional}
	}
	return BuildReport(results)
}

func (r *Registry) cachedReport(ctx context.Context) (Report, bool) {
	if r.reportCache == nil || !r.cachePolicy.Enabled() {
		return Report{}, false
	}
	data, ok := r.reportCache.Get(ctx, reportCacheKey)
	if !ok {
		return Report{}, false
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, false
	}
	return report, true
}

// storeReport caches report if no check was added or removed since the
// snapshot at gen was taken. The read lock is held across Set so that Add
// and Remove, which bump gen under the write lock and then invalidate,
// always delete what is stored here.
func (r *Registry) storeReport(ctx context.Context, report Report, gen uint64) {
	if r.reportCache == nil || !r.cachePolicy.Enabled() {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.gen != gen {
		return
	}
	_ = r.reportCache.Set(ctx, reportCacheKey, data, r.cachePolicy.EffectiveTTL())
}
