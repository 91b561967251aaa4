package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func reqWith(kv ...string) *Request {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return &Request{Headers: h}
}

func TestAPIKeyAuthenticator_Supports(t *testing.T) {
	a := NewAPIKeyAuthenticator("", NewMemoryAPIKeyStore())

	tests := []struct {
		name string
		req  *Request
		want bool
	}{
		{"no header", reqWith(), false},
		{"api key header", reqWith("X-API-Key", "k"), true},
		{"bearer only", reqWith("Authorization", "Bearer t"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Supports(context.Background(), tt.req); got != tt.want {
				t.Errorf("Supports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIKeyAuthenticator_Authenticate(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.Add("ops", "good-key", "admin")
	store.Put(&APIKey{
		Hash:      HashAPIKey("old-key"),
		Principal: "retired",
		ExpiresAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	a := NewAPIKeyAuthenticator("X-Health-Key", store)

	tests := []struct {
		name    string
		key     string
		wantOK  bool
		wantErr error
	}{
		{"valid", "good-key", true, nil},
		{"valid with whitespace", "  good-key ", true, nil},
		{"unknown", "nope", false, ErrInvalidCredentials},
		{"expired", "old-key", false, ErrTokenExpired},
		{"missing", "", false, ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Authenticate(context.Background(), reqWith("X-Health-Key", tt.key))
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if res.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v, want %v", res.Authenticated, tt.wantOK)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if tt.wantOK {
				if res.Identity.Principal != "ops" || !res.Identity.HasRole("admin") {
					t.Errorf("Identity = %+v", res.Identity)
				}
			}
		})
	}
}

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*APIKey, error) {
	return nil, errors.New("store down")
}

func TestAPIKeyAuthenticator_StoreError(t *testing.T) {
	a := NewAPIKeyAuthenticator("", failingStore{})
	res, err := a.Authenticate(context.Background(), reqWith("X-API-Key", "k"))
	if err == nil || res != nil {
		t.Fatalf("Authenticate() = %v, %v; want internal error", res, err)
	}
	if Allow(context.Background(), a, reqWith("X-API-Key", "k")) {
		t.Error("Allow() = true on store error")
	}
}

func TestHashAPIKey(t *testing.T) {
	if HashAPIKey("a") == HashAPIKey("b") {
		t.Error("distinct keys hashed equal")
	}
	if got := len(HashAPIKey("a")); got != 64 {
		t.Errorf("hash length = %d, want 64", got)
	}
}
