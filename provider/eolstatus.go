package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// EOLStatusProvider queries eolstatus.com, a second aggregator with the
// same cycle-list shape as endoflife.date. It runs after
// EndOfLifeDateProvider in the cascade (lower priority number wins, so
// this carries a higher number) and exists to corroborate or fill gaps
// the first aggregator leaves.
type EOLStatusProvider struct {
	cfg  ProviderConfig
	http *aggregatorHTTP
}

func NewEOLStatusProvider(cfg ProviderConfig) *EOLStatusProvider {
	if cfg.Name == "" {
		cfg.Name = "eolstatus.com"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://eolstatus.com/api"
	}
	return &EOLStatusProvider{cfg: cfg, http: newAggregatorHTTP(base, client)}
}

func (p *EOLStatusProvider) Id() string    { return p.cfg.Name }
func (p *EOLStatusProvider) Priority() int  { return 60 }
func (p *EOLStatusProvider) Supports(fingerprint.Fingerprint) bool { return true }

func (p *EOLStatusProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}

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

func (p *EOLStatusProvider) resultFromSlug(fp fingerprint.Fingerprint, slug string, cycles []aggregatorCycle) (*model.LookupResult, error) {
	cycle, minors, ok := resolveAggregatorCycle(cycles, fp.Version)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	confidence := 0.7
	if strings.EqualFold(slug, strings.ToLower(fp.Name)) {
		confidence = 0.8
	}
	return aggregatorResultFromCycle(p.Id(), fp, *cycle, minors, confidence, "https://eolstatus.com/product/"+slug), nil
}
