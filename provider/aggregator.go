// Package provider — aggregator connectors (endoflife.date, eolstatus.com).
//
// Unlike the vendor connectors, aggregators carry no product keyword
// set: Supports always returns true, and resolution instead runs a
// three-strategy search: a direct transformed-name GET, a retry over a
// small alias list, and finally a similarity scan of the full product
// catalog.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// aggregatorCycle mirrors an aggregator API's per-cycle JSON shape.
// Several fields are bool-or-date in the wire format (an aggregator
// returns `false` when a cycle has no value yet, or an ISO date string
// once one is published); parseDateOrBool below handles both.
type aggregatorCycle struct {
	Cycle           json.RawMessage `json:"cycle"`
	ReleaseDate     string          `json:"releaseDate,omitempty"`
	EOL             json.RawMessage `json:"eol,omitempty"`
	Support         json.RawMessage `json:"support,omitempty"`
	Latest          string          `json:"latest,omitempty"`
	LTS             json.RawMessage `json:"lts,omitempty"`
	Discontinued    json.RawMessage `json:"discontinued,omitempty"`
	Link            string          `json:"link,omitempty"`
}

// parseDateOrBool decodes a bool-or-date JSON field: `false` means
// "no date published" (nil), `true` is treated the same (aggregators
// use it to mean "reached EOL with no specific date"), and anything
// else is parsed as an ISO date.
func parseDateOrBool(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return parseCycleDate(s)
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return fmt.Sprintf("%g", f)
	}
	return ""
}

func rawBool(raw json.RawMessage) bool {
	var b bool
	return len(raw) > 0 && json.Unmarshal(raw, &b) == nil && b
}

// aggregatorHTTP is the shared low-level client both aggregator
// connectors use: one GET per slug, plus a full-catalog GET cached
// privately with a 6-hour TTL.
type aggregatorHTTP struct {
	baseURL string
	client  *http.Client

	mu         sync.Mutex
	catalog    []string
	catalogAt  time.Time
	catalogTTL time.Duration
}

func newAggregatorHTTP(baseURL string, client *http.Client) *aggregatorHTTP {
	return &aggregatorHTTP{baseURL: baseURL, client: client, catalogTTL: 6 * time.Hour}
}

func (a *aggregatorHTTP) getCycles(ctx context.Context, slug string) ([]aggregatorCycle, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/"+slug+".json", nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vigil-eol-advisor/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, resp.StatusCode, fmt.Errorf("%s: status %d: %s", a.baseURL, resp.StatusCode, string(body))
	}

	var cycles []aggregatorCycle
	if err := json.NewDecoder(resp.Body).Decode(&cycles); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode cycles: %w", err)
	}
	return cycles, resp.StatusCode, nil
}

// catalogSlugs returns the full product id list, refreshing the
// private 6h cache if stale. Refresh failures fall back to whatever
// was last cached (possibly empty on cold start).
func (a *aggregatorHTTP) catalogSlugs(ctx context.Context) []string {
	a.mu.Lock()
	fresh := time.Since(a.catalogAt) < a.catalogTTL
	cached := a.catalog
	a.mu.Unlock()
	if fresh {
		return cached
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/all.json", nil)
	if err != nil {
		return cached
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return cached
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return cached
	}

	var slugs []string
	if err := json.NewDecoder(resp.Body).Decode(&slugs); err != nil {
		return cached
	}

	a.mu.Lock()
	a.catalog = slugs
	a.catalogAt = time.Now()
	a.mu.Unlock()
	return slugs
}

// refreshCatalog forces a catalog re-fetch, used by the background
// CatalogSyncer so a request never blocks on a cold cache.
func (a *aggregatorHTTP) refreshCatalog(ctx context.Context) {
	a.mu.Lock()
	a.catalogAt = time.Time{}
	a.mu.Unlock()
	a.catalogSlugs(ctx)
}

// tokenize splits on '-', '_', and whitespace for the Jaccard scorer.
func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// similarity scores a candidate against a search term: exact match
// scores 1.0, containment either direction scores 0.8, otherwise
// Jaccard similarity over tokens with a +0.3 bonus when every search
// token appears in the candidate.
func similarity(search, candidate string) float64 {
	s, c := strings.ToLower(search), strings.ToLower(candidate)
	if s == c {
		return 1.0
	}
	if strings.Contains(c, s) || strings.Contains(s, c) {
		return 0.8
	}

	searchTokens := tokenize(s)
	candTokens := tokenize(c)
	if len(searchTokens) == 0 || len(candTokens) == 0 {
		return 0
	}

	intersection := 0
	allPresent := true
	for t := range searchTokens {
		if _, ok := candTokens[t]; ok {
			intersection++
		} else {
			allPresent = false
		}
	}
	union := len(searchTokens) + len(candTokens) - intersection
	score := float64(intersection) / float64(union)
	if allPresent {
		score += 0.3
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// bestCandidates returns catalog slugs scoring >= 0.3 against search,
// highest score first, capped at topK.
func bestCandidates(search string, catalog []string, topK int) []string {
	type scored struct {
		slug  string
		score float64
	}
	var matches []scored
	for _, slug := range catalog {
		sc := similarity(search, slug)
		if sc >= 0.3 {
			matches = append(matches, scored{slug, sc})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.slug
	}
	return out
}

// resolveAggregatorCycle picks the best matching aggregatorCycle for a
// version query out of a slug's cycle list, reusing the version
// matching policy by adapting aggregatorCycle into the Cycle shape
// MatchCycle already understands.
func resolveAggregatorCycle(cycles []aggregatorCycle, version string) (*aggregatorCycle, []string, bool) {
	asCycles := make([]Cycle, len(cycles))
	for i, c := range cycles {
		asCycles[i] = Cycle{
			ID:          rawString(c.Cycle),
			ReleaseDate: c.ReleaseDate,
		}
	}
	if version == "" {
		if len(cycles) == 0 {
			return nil, nil, false
		}
		// No version given: the latest-released cycle is the answer.
		sort.Slice(asCycles, func(i, j int) bool { return asCycles[i].ReleaseDate > asCycles[j].ReleaseDate })
		for i := range cycles {
			if rawString(cycles[i].Cycle) == asCycles[0].ID {
				return &cycles[i], nil, true
			}
		}
		return nil, nil, false
	}

	matched, minors, ok := MatchCycle(asCycles, version)
	if !ok {
		return nil, nil, false
	}
	for i := range cycles {
		if rawString(cycles[i].Cycle) == matched.ID {
			return &cycles[i], minors, true
		}
	}
	return nil, nil, false
}

func aggregatorResultFromCycle(source string, fp fingerprint.Fingerprint, c aggregatorCycle, minors []string, confidence float64, sourceURL string) *model.LookupResult {
	eol := parseDateOrBool(c.EOL)
	support := parseDateOrBool(c.Support)
	release := parseCycleDate(c.ReleaseDate)
	now := time.Now()
	status, risk := model.DeriveStatusRisk(eol, now)

	extra := map[string]any{}
	if rawBool(c.LTS) {
		extra["lts"] = true
	}
	if rawBool(c.Discontinued) {
		extra["discontinued"] = true
	}
	if len(minors) > 0 {
		extra["minor_versions"] = minors
	}

	url := c.Link
	if url == "" {
		url = sourceURL
	}

	return &model.LookupResult{
		Success:        true,
		SoftwareName:   fp.Name,
		Version:        rawString(c.Cycle),
		EOLDate:        eol,
		SupportEndDate: support,
		ReleaseDate:    release,
		LatestVersion:  c.Latest,
		Status:         status,
		Risk:           risk,
		Confidence:     confidence,
		Source:         source,
		SourceURL:      url,
		FetchedAt:      now,
		Extra:          extra,
	}
}
