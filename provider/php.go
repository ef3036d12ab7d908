package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var phpKeywords = []string{"php"}

var phpCycles = []Cycle{
	{ID: "7.4.0", ReleaseDate: "2019-11-28", EOLDate: "2022-11-28"},
	{ID: "8.0.0", ReleaseDate: "2020-11-26", EOLDate: "2023-11-26"},
	{ID: "8.1.0", ReleaseDate: "2021-11-25", EOLDate: "2024-11-25"},
	{ID: "8.2.0", ReleaseDate: "2022-12-08", EOLDate: "2025-12-08"},
	{ID: "8.3.0", ReleaseDate: "2023-11-23", EOLDate: "2026-11-23"},
	{ID: "8.4.0", ReleaseDate: "2024-11-21", EOLDate: "2027-11-21"},
}

// PHPProvider implements Provider for PHP.
type PHPProvider struct{ cfg ProviderConfig }

func NewPHPProvider(cfg ProviderConfig) *PHPProvider {
	if cfg.Name == "" {
		cfg.Name = "php"
	}
	return &PHPProvider{cfg: cfg}
}

func (p *PHPProvider) Id() string   { return p.cfg.Name }
func (p *PHPProvider) Priority() int { return 10 }
func (p *PHPProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, phpKeywords)
}

func (p *PHPProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	cycle, minors, ok := resolveCycle(phpCycles, fingerprint.ProductCode(fp), fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.9, "https://www.php.net/supported-versions.php")
}
