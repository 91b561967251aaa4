package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonwraymond/healthkit/health"
)

// Probe fetches a running daemon's report from url. It returns the report
// and an error when the endpoint is unreachable or answers with a status
// other than 200.
func Probe(ctx context.Context, client *http.Client, url string) (health.Report, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return health.Report{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return health.Report{}, err
	}
	defer resp.Body.Close()

	var report health.Report
	decodeErr := json.NewDecoder(resp.Body).Decode(&report)
	if resp.StatusCode != http.StatusOK {
		if decodeErr != nil {
			// Not a report; likely a proxy in front of the daemon.
			return health.Report{}, fmt.Errorf("%s: HTTP %d", url, resp.StatusCode)
		}
		return report, fmt.Errorf("%s: status %q (HTTP %d)", url, report.Status, resp.StatusCode)
	}
	if decodeErr != nil {
		return health.Report{}, fmt.Errorf("decode report: %w", decodeErr)
	}
	return report, nil
}
