package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/healthkit/auth"
)

// DefaultRequestTimeout bounds one report run triggered by an HTTP request.
const DefaultRequestTimeout = 10 * time.Second

type handlerConfig struct {
	authenticator auth.Authenticator
	timeout       time.Duration
}

// HandlerOption configures the HTTP handlers and framework adapters.
type HandlerOption func(*handlerConfig)

// WithAuthenticator hides per-check detail from callers that fail to
// authenticate. The status code is unaffected.
func WithAuthenticator(a auth.Authenticator) HandlerOption {
	return func(c *handlerConfig) {
		c.authenticator = a
	}
}

// WithRequestTimeout bounds each request's run. Zero disables the bound.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(c *handlerConfig) {
		c.timeout = d
	}
}

func newHandlerConfig(opts []HandlerOption) handlerConfig {
	cfg := handlerConfig{timeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c handlerConfig) context(r *http.Request) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(r.Context(), c.timeout)
	}
	return context.WithCancel(r.Context())
}

func (c handlerConfig) detailed(ctx context.Context, r *http.Request) bool {
	return auth.Allow(ctx, c.authenticator, auth.FromHTTP(r))
}

// ReportFor runs reg for the request r, applying opts. Framework adapters
// call it and write the result with their own JSON helpers.
func ReportFor(r *http.Request, reg *Registry, opts ...HandlerOption) Report {
	cfg := newHandlerConfig(opts)
	ctx, cancel := cfg.context(r)
	defer cancel()

	report := reg.Report(ctx)
	if !cfg.detailed(ctx, r) {
		return report.Summary()
	}
	return report
}

// Handler serves the aggregated report as JSON with status 200 or 503.
func Handler(reg *Registry, opts ...HandlerOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := ReportFor(r, reg, opts...)
		writeJSON(w, r, report.HTTPStatus(), report)
	}
}

// CheckHandler serves a single check. Unknown names yield 404. A failed
// required check yields 503.
func CheckHandler(reg *Registry, name string, opts ...HandlerOption) http.HandlerFunc {
	cfg := newHandlerConfig(opts)
	return func(w http.ResponseWriter, r *http.Request) {
		serveCheck(w, r, reg, name, cfg)
	}
}

// CheckFor runs the single check name for the request r, applying opts.
// It returns ErrCheckNotFound for unknown names.
func CheckFor(r *http.Request, reg *Registry, name string, opts ...HandlerOption) (CheckResult, error) {
	return newHandlerConfig(opts).check(r, reg, name)
}

func (c handlerConfig) check(r *http.Request, reg *Registry, name string) (CheckResult, error) {
	ctx, cancel := c.context(r)
	defer cancel()

	result, err := reg.RunOne(ctx, name)
	if err != nil {
		return CheckResult{}, err
	}
	if !c.detailed(ctx, r) {
		result.Error = ""
	}
	return result, nil
}

func serveCheck(w http.ResponseWriter, r *http.Request, reg *Registry, name string, cfg handlerConfig) {
	result, err := cfg.check(r, reg, name)
	if err != nil {
		writeJSON(w, r, http.StatusNotFound, ErrorBody{Error: err.Error()})
		return
	}
	writeJSON(w, r, result.HTTPStatus(), result)
}

// LivenessHandler always answers 200 {"status":"ok"} without running checks.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]Status{"status": StatusOK})
	}
}

// RegisterHandlers mounts /health, /health/ready, /health/live and
// /health/checks/{name} on mux.
func RegisterHandlers(mux *http.ServeMux, reg *Registry, opts ...HandlerOption) {
	cfg := newHandlerConfig(opts)
	report := Handler(reg, opts...)

	mux.Handle("GET /health", report)
	mux.Handle("GET /health/ready", report)
	mux.Handle("GET /health/live", LivenessHandler())
	mux.HandleFunc("GET /health/checks/{name}", func(w http.ResponseWriter, r *http.Request) {
		serveCheck(w, r, reg, r.PathValue("name"), cfg)
	})
}

// ErrorBody is the JSON body of a 404 from the single-check endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}
