package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/healthkit/auth"
)

func newTestRegistry(t *testing.T, failing bool) *Registry {
	t.Helper()
	reg := NewRegistry()
	_ = reg.AddFunc("db", okCheck)
	_ = reg.AddFunc("queue", func(context.Context) error {
		if failing {
			return errors.New("broker unreachable")
		}
		return nil
	})
	return reg
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		failing    bool
		wantCode   int
		wantStatus string
	}{
		{"healthy", false, http.StatusOK, "ok"},
		{"unhealthy", true, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Handler(newTestRegistry(t, tt.failing))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
				t.Errorf("Cache-Control = %q", cc)
			}
			body := decode(t, rec)
			if body["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", body["status"], tt.wantStatus)
			}
			checks, ok := body["checks"].([]any)
			if !ok || len(checks) != 2 {
				t.Fatalf("checks = %v", body["checks"])
			}
			if _, ok := body["timestamp"].(string); !ok {
				t.Errorf("timestamp = %v", body["timestamp"])
			}
		})
	}
}

func TestHandler_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(NewRegistry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"checks":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_Head(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(newTestRegistry(t, true)).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD wrote body %q", rec.Body.String())
	}
}

func TestHandler_RequestTimeout(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddFunc("hangs", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	rec := httptest.NewRecorder()
	Handler(reg, WithRequestTimeout(10*time.Millisecond)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deadline exceeded") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_Authenticator(t *testing.T) {
	store := auth.NewMemoryAPIKeyStore()
	store.Add("ops", "letmein")
	h := Handler(newTestRegistry(t, true), WithAuthenticator(auth.NewAPIKeyAuthenticator("", store)))

	t.Run("anonymous gets summary", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("code = %d, want 503", rec.Code)
		}
		body := decode(t, rec)
		if _, ok := body["checks"]; ok {
			t.Errorf("anonymous caller saw checks: %v", body)
		}
		if body["status"] != "error" {
			t.Errorf("status = %v", body["status"])
		}
	})

	t.Run("authenticated gets detail", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-API-Key", "letmein")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("code = %d, want 503", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "broker unreachable") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestCheckHandler(t *testing.T) {
	reg := newTestRegistry(t, true)
	_ = reg.AddFunc("search", func(context.Context) error { return errors.New("slow") }, Optional())

	tests := []struct {
		name     string
		check    string
		wantCode int
	}{
		{"passing", "db", http.StatusOK},
		{"failing", "queue", http.StatusServiceUnavailable},
		{"optional failing", "search", http.StatusOK},
		{"unknown", "nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			CheckHandler(reg, tt.check).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestCheckHandler_HidesErrorWithoutAuth(t *testing.T) {
	store := auth.NewMemoryAPIKeyStore()
	h := CheckHandler(newTestRegistry(t, true), "queue",
		WithAuthenticator(auth.NewAPIKeyAuthenticator("", store)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Contains(rec.Body.String(), "broker") {
		t.Errorf("error leaked to anonymous caller: %s", rec.Body.String())
	}
	if decode(t, rec)["passed"] != false {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux, newTestRegistry(t, true))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/health", http.StatusServiceUnavailable},
		{"/health/ready", http.StatusServiceUnavailable},
		{"/health/live", http.StatusOK},
		{"/health/checks/db", http.StatusOK},
		{"/health/checks/queue", http.StatusServiceUnavailable},
		{"/health/checks/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantCode {
				t.Errorf("code = %d, want %d", resp.StatusCode, tt.wantCode)
			}
		})
	}

	resp, err := http.Post(srv.URL+"/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST code = %d, want 405", resp.StatusCode)
	}
}
