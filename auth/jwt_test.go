package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("health-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestJWTAuthenticator_Supports(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{Secret: testSecret})

	tests := []struct {
		name string
		req  *Request
		want bool
	}{
		{"no header", reqWith(), false},
		{"bearer", reqWith("Authorization", "Bearer abc"), true},
		{"lowercase bearer", reqWith("Authorization", "bearer abc"), true},
		{"basic", reqWith("Authorization", "Basic abc"), false},
		{"empty bearer", reqWith("Authorization", "Bearer "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Supports(context.Background(), tt.req); got != tt.want {
				t.Errorf("Supports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{
		Secret:     testSecret,
		Issuer:     "healthd",
		Audience:   "ops",
		RolesClaim: "roles",
	})
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	valid := jwt.MapClaims{"sub": "alice", "iss": "healthd", "aud": "ops", "exp": future, "roles": []any{"viewer"}}

	tests := []struct {
		name    string
		token   string
		wantOK  bool
		wantErr error
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, testSecret, valid), true, nil},
		{"expired", sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "a", "iss": "healthd", "aud": "ops", "exp": past}), false, ErrTokenExpired},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), valid), false, ErrInvalidCredentials},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "a", "iss": "x", "aud": "ops", "exp": future}), false, ErrInvalidCredentials},
		{"wrong audience", sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "a", "iss": "healthd", "aud": "dev", "exp": future}), false, ErrInvalidCredentials},
		{"no expiry", sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "a", "iss": "healthd", "aud": "ops"}), false, ErrInvalidCredentials},
		{"garbage", "not.a.jwt", false, ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Authenticate(context.Background(), reqWith("Authorization", "Bearer "+tt.token))
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if res.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v (err %v), want %v", res.Authenticated, res.Err, tt.wantOK)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if tt.wantOK {
				id := res.Identity
				if id.Principal != "alice" || !id.HasRole("viewer") || id.Method != MethodJWT {
					t.Errorf("Identity = %+v", id)
				}
				if id.ExpiresAt.Unix() != future {
					t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt.Unix(), future)
				}
			}
		})
	}
}
