package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/model"
)

// PagerDutyConfig holds PagerDuty Events API v2 settings.
type PagerDutyConfig struct {
	RoutingKey  string
	SourceName  string
	HTTPTimeout time.Duration
	Enabled     bool
}

func DefaultPagerDutyConfig() PagerDutyConfig {
	return PagerDutyConfig{SourceName: "eoladvisor", HTTPTimeout: 10 * time.Second, Enabled: false}
}

const pagerDutyEventsURL = "https://events.pagerduty.com/v2/enqueue"

// PagerDutySink fires a PagerDuty alert whenever an Event reports
// risk=critical, keeping the low-priority events (cache hits, plan
// completions) out of the pager entirely.
type PagerDutySink struct {
	cfg    PagerDutyConfig
	client *http.Client
	logger zerolog.Logger
}

func NewPagerDutySink(cfg PagerDutyConfig, logger zerolog.Logger) *PagerDutySink {
	return &PagerDutySink{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger.With().Str("component", "pagerduty").Logger(),
	}
}

func (p *PagerDutySink) Record(e Event) {
	if !p.cfg.Enabled || p.cfg.RoutingKey == "" {
		return
	}
	if e.Risk != model.RiskCritical {
		return
	}
	dedupKey := fmt.Sprintf("eoladvisor:%s:%s", e.AssetName, e.Provider)
	if err := p.trigger(dedupKey, e); err != nil {
		p.logger.Error().Err(err).Str("dedup_key", dedupKey).Msg("pagerduty alert failed")
	}
}

func (p *PagerDutySink) trigger(dedupKey string, e Event) error {
	payload := map[string]any{
		"routing_key":  p.cfg.RoutingKey,
		"event_action": "trigger",
		"dedup_key":    dedupKey,
		"payload": map[string]any{
			"summary":   fmt.Sprintf("%s is at critical EOL risk (status=%s)", e.AssetName, e.Status),
			"severity":  "critical",
			"source":    p.cfg.SourceName,
			"component": "eoladvisor",
			"group":     "asset-lifecycle",
			"class":     "end-of-life",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"custom_details": map[string]any{
				"asset_name": e.AssetName,
				"provider":   e.Provider,
				"status":     e.Status,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("pagerduty: marshal failed: %w", err)
	}

	resp, err := p.client.Post(pagerDutyEventsURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pagerduty: API call failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("pagerduty: HTTP %d", resp.StatusCode)
	}
	return nil
}
