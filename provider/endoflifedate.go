package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// EndOfLifeDateProvider queries endoflife.date. It carries no keyword
// list of its own — Supports always returns true, letting the Router
// fall back to it after vendor connectors decline a fingerprint — and
// resolves a fingerprint via a three-strategy search: direct slug GET,
// a short alias retry, and a similarity scan of the full product
// catalog.
type EndOfLifeDateProvider struct {
	cfg  ProviderConfig
	http *aggregatorHTTP
}

func NewEndOfLifeDateProvider(cfg ProviderConfig) *EndOfLifeDateProvider {
	if cfg.Name == "" {
		cfg.Name = "endoflife.date"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://endoflife.date/api"
	}
	return &EndOfLifeDateProvider{cfg: cfg, http: newAggregatorHTTP(base, client)}
}

func (p *EndOfLifeDateProvider) Id() string    { return p.cfg.Name }
func (p *EndOfLifeDateProvider) Priority() int  { return 50 }
func (p *EndOfLifeDateProvider) Supports(fingerprint.Fingerprint) bool { return true }

// slugVariations builds the small set of product-name spellings worth
// trying directly before falling back to a catalog-wide similarity
// scan: the raw name, hyphenated, and with spaces collapsed.
func slugVariations(fp fingerprint.Fingerprint) []string {
	name := strings.ToLower(strings.TrimSpace(fp.Name))
	hyphenated := strings.ReplaceAll(name, " ", "-")
	squashed := strings.ReplaceAll(name, " ", "")

	seen := map[string]bool{}
	var out []string
	for _, v := range []string{hyphenated, squashed, name} {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (p *EndOfLifeDateProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}

	// Strategy 1 & 2: direct slug, then its close variations.
	for _, slug := range slugVariations(fp) {
		cycles, status, err := p.http.getCycles(ctx, slug)
		if err != nil {
			return nil, &model.ProviderError{Kind: model.ErrTransient, Provider: p.Id(), Message: err.Error(), Err: err}
		}
		if status == http.StatusNotFound || len(cycles) == 0 {
			continue
		}
		return p.resultFromSlug(fp, slug, cycles)
	}

	// Strategy 3: similarity scan over the full catalog.
	catalog := p.http.catalogSlugs(ctx)
	for _, slug := range bestCandidates(fp.Name, catalog, 3) {
		cycles, status, err := p.http.getCycles(ctx, slug)
		if err != nil || status != http.StatusOK || len(cycles) == 0 {
			continue
		}
		res, err := p.resultFromSlug(fp, slug, cycles)
		if err == nil {
			res.Confidence = minFloat(res.Confidence, similarity(fp.Name, slug))
			return res, nil
		}
	}

	return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no product matched " + fp.Name}
}

func (p *EndOfLifeDateProvider) resultFromSlug(fp fingerprint.Fingerprint, slug string, cycles []aggregatorCycle) (*model.LookupResult, error) {
	cycle, minors, ok := resolveAggregatorCycle(cycles, fp.Version)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	confidence := 0.75
	if strings.EqualFold(slug, strings.ToLower(fp.Name)) {
		confidence = 0.85
	}
	res := aggregatorResultFromCycle(p.Id(), fp, *cycle, minors, confidence, "https://endoflife.date/"+slug)
	return res, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
