package sagipero

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const healthTimeout = 5 * time.Second

// HealthURL returns the backend health endpoint for an API base URL. The
// endpoint lives beside the API, not under it.
func HealthURL(apiBase string) string {
	base := strings.TrimRight(apiBase, "/")
	base = strings.TrimSuffix(base, "/api")
	return base + "/health"
}

// Health probes the backend once without retrying.
func (c *Client) Health(ctx context.Context) error {
	return Probe(ctx, c.httpClient, c.baseURL)
}

// Probe checks the health endpoint of an arbitrary API base URL.
func Probe(ctx context.Context, hc *http.Client, apiBase string) error {
	if hc == nil {
		hc = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, HealthURL(apiBase), nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return newNetworkError(http.MethodGet, "/health", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return newStatusError(http.MethodGet, "/health", resp.StatusCode, nil)
	}
	return nil
}
