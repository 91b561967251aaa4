package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/healthkit/health"
	"github.com/jonwraymond/healthkit/internal/config"
	"github.com/jonwraymond/healthkit/observe"
)

func listenAddr(t *testing.T) (string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	return ln.Addr().String(), func() { ln.Close() }
}

func baseConfig(framework string) config.Config {
	cfg := config.Default()
	cfg.Server.Framework = framework
	cfg.Observe.Logging.Enabled = false
	return cfg
}

func newApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_Frameworks(t *testing.T) {
	open, closeOpen := listenAddr(t)
	defer closeOpen()

	for _, fw := range []string{config.FrameworkHTTP, config.FrameworkGin, config.FrameworkEcho} {
		t.Run(fw, func(t *testing.T) {
			cfg := baseConfig(fw)
			cfg.Checks = []config.CheckConfig{
				{Name: "memory", Type: config.TypeMemory, Threshold: 1},
				{Name: "upstream", Type: config.TypeTCP, Addr: open},
			}
			a := newApp(t, cfg)

			rec := get(t, a.Handler(), "/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("/health code = %d, body %s", rec.Code, rec.Body.String())
			}
			var report health.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(report.Checks) != 2 || report.Checks[0].Name != "memory" || report.Checks[1].Name != "upstream" {
				t.Errorf("checks = %+v", report.Checks)
			}

			if code := get(t, a.Handler(), "/health/live").Code; code != http.StatusOK {
				t.Errorf("/health/live code = %d", code)
			}
			if code := get(t, a.Handler(), "/health/checks/upstream").Code; code != http.StatusOK {
				t.Errorf("/health/checks/upstream code = %d", code)
			}
		})
	}
}

func TestNew_FailingDependencies(t *testing.T) {
	closed, closeIt := listenAddr(t)
	closeIt()

	cfg := baseConfig(config.FrameworkHTTP)
	cfg.Checks = []config.CheckConfig{
		{Name: "db", Type: config.TypePostgres, DSN: "postgres://app:pw@" + closed + "/app", Timeout: time.Second},
		{Name: "cache", Type: config.TypeRedis, Addr: closed, Optional: true, Timeout: time.Second},
		{Name: "events", Type: config.TypeKafka, Brokers: []string{closed}, Timeout: time.Second,
			Breaker: &config.BreakerConfig{MaxFailures: 1, Cooldown: time.Hour}},
	}
	a := newApp(t, cfg)

	rec := get(t, a.Handler(), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", rec.Code)
	}
	var report health.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, c := range report.Checks {
		if c.Passed {
			t.Errorf("%s passed against a closed port", c.Name)
		}
	}
	if !report.Checks[1].Optional {
		t.Error("cache should be optional")
	}

	// The kafka breaker opened after one failure.
	rec = get(t, a.Handler(), "/health/checks/events")
	if !strings.Contains(rec.Body.String(), "circuit") {
		t.Errorf("second run body = %s, want open circuit", rec.Body.String())
	}
}

func TestNew_InvalidCheck(t *testing.T) {
	cfg := baseConfig(config.FrameworkHTTP)
	cfg.Checks = []config.CheckConfig{
		{Name: "db", Type: config.TypePostgres, DSN: "postgres://%zz"},
	}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() error = nil for malformed DSN")
	}

	cfg.Checks = []config.CheckConfig{
		{Name: "m", Type: config.TypeMemory},
		{Name: "m", Type: config.TypeMemory},
	}
	if _, err := New(context.Background(), cfg); !errors.Is(err, health.ErrDuplicateCheck) {
		t.Errorf("New() error = %v, want ErrDuplicateCheck", err)
	}
}

func TestNew_Auth(t *testing.T) {
	cfg := baseConfig(config.FrameworkGin)
	cfg.Auth = config.AuthConfig{APIKeys: []string{"ops-key"}, JWTSecret: "s"}
	cfg.Checks = []config.CheckConfig{{Name: "memory", Type: config.TypeMemory, Threshold: 1}}
	a := newApp(t, cfg)

	if body := get(t, a.Handler(), "/health").Body.String(); strings.Contains(body, "checks") {
		t.Errorf("anonymous body = %s", body)
	}
	if body := get(t, a.Handler(), "/health", "X-API-Key", "ops-key").Body.String(); !strings.Contains(body, "memory") {
		t.Errorf("authenticated body = %s", body)
	}
}

func TestNew_PrometheusEndpoint(t *testing.T) {
	for _, fw := range []string{config.FrameworkHTTP, config.FrameworkGin, config.FrameworkEcho} {
		t.Run(fw, func(t *testing.T) {
			cfg := baseConfig(fw)
			cfg.Observe.Metrics = observe.MetricsConfig{Enabled: true, Exporter: "prometheus"}
			cfg.Checks = []config.CheckConfig{{Name: "memory", Type: config.TypeMemory, Threshold: 1}}
			a := newApp(t, cfg)

			get(t, a.Handler(), "/health")
			rec := get(t, a.Handler(), "/metrics")
			if rec.Code != http.StatusOK {
				t.Fatalf("/metrics code = %d", rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "health_check") || !strings.Contains(body, "go_goroutines") {
				t.Errorf("/metrics missing series:\n%s", body)
			}
		})
	}
}

func TestNew_NoMetricsEndpointByDefault(t *testing.T) {
	a := newApp(t, baseConfig(config.FrameworkHTTP))
	if code := get(t, a.Handler(), "/metrics").Code; code != http.StatusNotFound {
		t.Errorf("/metrics code = %d, want 404", code)
	}
}

func TestNew_ReportCache(t *testing.T) {
	cfg := baseConfig(config.FrameworkHTTP)
	cfg.Cache.TTL = time.Minute
	a := newApp(t, cfg)

	calls := 0
	_ = a.Registry().AddFunc("counted", func(context.Context) error {
		calls++
		return nil
	})
	get(t, a.Handler(), "/health")
	get(t, a.Handler(), "/health")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestServeAndProbe(t *testing.T) {
	cfg := baseConfig(config.FrameworkEcho)
	cfg.Checks = []config.CheckConfig{{Name: "memory", Type: config.TypeMemory, Threshold: 1}}
	a := newApp(t, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	report, err := Probe(context.Background(), nil, url)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if report.Status != health.StatusOK {
		t.Errorf("Status = %q", report.Status)
	}

	_ = a.Registry().AddFunc("broken", func(context.Context) error { return errors.New("down") })
	if _, err := Probe(context.Background(), nil, url); err == nil {
		t.Error("Probe() error = nil for unhealthy daemon")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestProbe_Unreachable(t *testing.T) {
	addr, closeIt := listenAddr(t)
	closeIt()
	if _, err := Probe(context.Background(), nil, "http://"+addr+"/health"); err == nil {
		t.Error("Probe() error = nil for closed port")
	}
}

func TestProbe_NonJSONErrorReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer srv.Close()

	_, err := Probe(context.Background(), srv.Client(), srv.URL)
	if err == nil {
		t.Fatal("Probe() error = nil")
	}
	if !strings.Contains(err.Error(), "HTTP 502") || strings.Contains(err.Error(), "decode") {
		t.Errorf("Probe() error = %v, want the HTTP status", err)
	}
}
