package checks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/jonwraymond/healthkit/health"
)

// HTTPChecker issues a GET and accepts configured status codes.
type HTTPChecker struct {
	url    string
	client *http.Client
	accept []int
}

// HTTPOption configures an HTTPChecker.
type HTTPOption func(*HTTPChecker)

// WithHTTPClient sets the client used for probes.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPChecker) {
		if c != nil {
			h.client = c
		}
	}
}

// WithExpectStatus accepts only the given status codes instead of any 2xx/3xx.
func WithExpectStatus(codes ...int) HTTPOption {
	return func(h *HTTPChecker) {
		h.accept = codes
	}
}

// HTTPGet probes url with a GET request.
func HTTPGet(url string, opts ...HTTPOption) *HTTPChecker {
	h := &HTTPChecker{url: url, client: http.DefaultClient}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Check performs the request and drains the body.
func (h *HTTPChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if !h.accepts(resp.StatusCode) {
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, h.url)
	}
	return nil
}

func (h *HTTPChecker) accepts(code int) bool {
	if len(h.accept) > 0 {
		return slices.Contains(h.accept, code)
	}
	return code >= 200 && code < 400
}

var _ health.Checker = (*HTTPChecker)(nil)
