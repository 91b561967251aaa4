package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// CheckResult is the outcome of one check execution.
type CheckResult struct {
	Name     string
	Passed   bool
	Error    string
	Duration time.Duration
	Optional bool
}

// HTTPStatus is 503 for a failed required check and 200 otherwise.
func (c CheckResult) HTTPStatus() int {
	if !c.Passed && !c.Optional {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

type checkResultJSON struct {
	Name       string  `json:"name"`
	Passed     bool    `json:"passed"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Optional   bool    `json:"optional,omitempty"`
}

// MarshalJSON encodes the duration as fractional milliseconds.
func (c CheckResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(checkResultJSON{
		Name:       c.Name,
		Passed:     c.Passed,
		Error:      c.Error,
		DurationMS: float64(c.Duration) / float64(time.Millisecond),
		Optional:   c.Optional,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *CheckResult) UnmarshalJSON(data []byte) error {
	var raw checkResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CheckResult{
		Name:     raw.Name,
		Passed:   raw.Passed,
		Error:    raw.Error,
		Duration: time.Duration(raw.DurationMS * float64(time.Millisecond)),
		Optional: raw.Optional,
	}
	return nil
}
