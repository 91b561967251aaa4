package auth

import (
	"context"
	"net/http"
)

// Authenticator validates credentials carried by a request.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Authenticate returns (nil, err) only for internal failures;
//   rejected credentials are reported as a Result with Authenticated=false.
type Authenticator interface {
	// Name identifies the authenticator in logs.
	Name() string

	// Supports reports whether the request carries credentials this
	// authenticator understands.
	Supports(ctx context.Context, req *Request) bool

	// Authenticate validates the credentials.
	Authenticate(ctx context.Context, req *Request) (*Result, error)
}

// Request carries the credential-bearing parts of an inbound request.
type Request struct {
	Headers http.Header
}

// FromHTTP builds a Request from an *http.Request.
func FromHTTP(r *http.Request) *Request {
	return &Request{Headers: r.Header}
}

// Header returns the first value of key, or "".
func (r *Request) Header(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// Result is the outcome of one authentication attempt.
type Result struct {
	Authenticated bool
	Identity      *Identity
	Err           error
	Method        Method
}

func success(id *Identity) *Result {
	return &Result{Authenticated: true, Identity: id, Method: id.Method}
}

func failure(err error, m Method) *Result {
	return &Result{Err: err, Method: m}
}

// Allow reports whether req authenticates against a. A nil authenticator
// allows every request; internal errors deny.
func Allow(ctx context.Context, a Authenticator, req *Request) bool {
	if a == nil {
		return true
	}
	if !a.Supports(ctx, req) {
		return false
	}
	res, err := a.Authenticate(ctx, req)
	if err != nil || res == nil {
		return false
	}
	return res.Authenticated
}
