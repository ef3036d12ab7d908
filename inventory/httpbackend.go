package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPBackend implements Backend against the telemetry backend's
// outbound contract: plain GET requests returning a JSON array of rows
// shaped {computer, raw_name, raw_version}.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend constructs a Backend pointed at a telemetry service's
// base URL (config.Config.TelemetryBackendURL).
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type wireRow struct {
	Computer   string `json:"computer"`
	RawName    string `json:"raw_name"`
	RawVersion string `json:"raw_version"`
}

func (b *HTTPBackend) query(ctx context.Context, path string, windowDays, limit int) ([]Row, error) {
	u, err := url.Parse(b.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid telemetry backend URL: %w", err)
	}
	q := u.Query()
	q.Set("window_days", fmt.Sprintf("%d", windowDays))
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "eoladvisor/1.0")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telemetry backend returned %d", resp.StatusCode)
	}

	var wire []wireRow
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding telemetry backend response: %w", err)
	}

	rows := make([]Row, 0, len(wire))
	for _, w := range wire {
		rows = append(rows, Row{Computer: w.Computer, RawName: w.RawName, RawVersion: w.RawVersion})
	}
	return rows, nil
}

// QueryOSHeartbeat implements Backend.
func (b *HTTPBackend) QueryOSHeartbeat(ctx context.Context, windowDays int, limit int) ([]Row, error) {
	return b.query(ctx, "/os-heartbeat", windowDays, limit)
}

// QuerySoftwareInventory implements Backend.
func (b *HTTPBackend) QuerySoftwareInventory(ctx context.Context, windowDays int, limit int) ([]Row, error) {
	return b.query(ctx, "/software-inventory", windowDays, limit)
}
