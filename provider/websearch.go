package provider

import (
	"context"
	"regexp"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// Searcher abstracts the web search backend WebSearchProvider queries.
// A concrete implementation wraps whatever search API the deployment
// is configured with; tests supply a stub.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// SearchHit is one result a Searcher returns.
type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

var eolDatePattern = regexp.MustCompile(`(?i)(end\s*of\s*life|eol|support\s*end(?:s|ed)?)[^0-9]{0,20}(\d{4}-\d{2}-\d{2}|\w+ \d{1,2},? \d{4}|\d{1,2}/\d{1,2}/\d{4})`)

var dateLayouts = []string{"2006-01-02", "January 2, 2006", "Jan 2, 2006", "1/2/2006"}

// WebSearchProvider is the fallback of last resort: it builds a small
// set of EOL-synonym queries, scans hit snippets for a date near an
// EOL phrase, and picks the date that falls in a plausible window
// (no more than 20 years behind or 10 years ahead of now). Confidence
// scales only with how many hits agree on the date (0.3, plus 0.1 per
// further agreeing hit, capped at 0.6); the hit's domain is not
// considered.
type WebSearchProvider struct {
	cfg      ProviderConfig
	searcher Searcher
}

func NewWebSearchProvider(cfg ProviderConfig, searcher Searcher) *WebSearchProvider {
	if cfg.Name == "" {
		cfg.Name = "web-search"
	}
	return &WebSearchProvider{cfg: cfg, searcher: searcher}
}

func (p *WebSearchProvider) Id() string    { return p.cfg.Name }
func (p *WebSearchProvider) Priority() int  { return 100 }
func (p *WebSearchProvider) Supports(fingerprint.Fingerprint) bool { return true }

func eolQueries(fp fingerprint.Fingerprint) []string {
	subject := fp.Name
	if fp.Version != "" {
		subject = fp.Name + " " + fp.Version
	}
	return []string{
		subject + " end of life date",
		subject + " EOL",
		subject + " support end date",
	}
}

func (p *WebSearchProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	if p.searcher == nil {
		return nil, &model.ProviderError{Kind: model.ErrNotSupported, Provider: p.Id(), Message: "no search backend configured"}
	}

	now := time.Now()
	type candidate struct {
		date   time.Time
		hit    SearchHit
	}
	var candidates []candidate

	for _, q := range eolQueries(fp) {
		hits, err := p.searcher.Search(ctx, q)
		if err != nil {
			return nil, &model.ProviderError{Kind: model.ErrTransient, Provider: p.Id(), Message: err.Error(), Err: err}
		}
		for _, h := range hits {
			if d, ok := extractPlausibleDate(h.Snippet, now); ok {
				candidates = append(candidates, candidate{date: d, hit: h})
			}
		}
	}

	if len(candidates) == 0 {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no plausible EOL date found for " + fp.String()}
	}

	// Majority date wins; on a tie, the date that reached the winning
	// count first wins.
	counts := make(map[string]int)
	bestDate := candidates[0].date
	bestHit := candidates[0].hit
	bestCount := 0
	for _, c := range candidates {
		key := c.date.Format("2006-01-02")
		counts[key]++
		if counts[key] > bestCount {
			bestCount = counts[key]
			bestDate = c.date
			bestHit = c.hit
		}
	}

	confidence := 0.3 + 0.1*float64(bestCount-1)
	if confidence > 0.6 {
		confidence = 0.6
	}

	status, risk := model.DeriveStatusRisk(&bestDate, now)
	return &model.LookupResult{
		Success:      true,
		SoftwareName: fp.Name,
		Version:      fp.Version,
		EOLDate:      &bestDate,
		Status:       status,
		Risk:         risk,
		Confidence:   confidence,
		Source:       p.Id(),
		SourceURL:    bestHit.URL,
		FetchedAt:    now,
		Extra:        map[string]any{"agreeing_hits": bestCount, "title": bestHit.Title},
	}, nil
}

// extractPlausibleDate looks for an EOL/support-end phrase followed
// closely by a date, parses it against the known layouts, and accepts
// it only if it falls within a plausible window around now.
func extractPlausibleDate(snippet string, now time.Time) (time.Time, bool) {
	m := eolDatePattern.FindStringSubmatch(snippet)
	if m == nil {
		return time.Time{}, false
	}
	raw := m[2]
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if plausible(t, now) {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func plausible(t, now time.Time) bool {
	lower := now.AddDate(-20, 0, 0)
	upper := now.AddDate(10, 0, 0)
	return t.After(lower) && t.Before(upper)
}
