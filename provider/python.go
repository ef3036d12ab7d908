package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var pythonKeywords = []string{"python", "cpython"}

var pythonCycles = []Cycle{
	{ID: "3.7.0", ReleaseDate: "2018-06-27", EOLDate: "2023-06-27"},
	{ID: "3.8.0", ReleaseDate: "2019-10-14", EOLDate: "2024-10-07"},
	{ID: "3.9.0", ReleaseDate: "2020-10-05", EOLDate: "2025-10-05"},
	{ID: "3.10.0", ReleaseDate: "2021-10-04", EOLDate: "2026-10-04"},
	{ID: "3.11.0", ReleaseDate: "2022-10-24", EOLDate: "2027-10-24"},
	{ID: "3.12.0", ReleaseDate: "2023-10-02", EOLDate: "2028-10-02"},
	{ID: "3.13.0", ReleaseDate: "2024-10-07", EOLDate: "2029-10-07"},
}

// PythonProvider implements Provider for CPython.
type PythonProvider struct{ cfg ProviderConfig }

func NewPythonProvider(cfg ProviderConfig) *PythonProvider {
	if cfg.Name == "" {
		cfg.Name = "python"
	}
	return &PythonProvider{cfg: cfg}
}

func (p *PythonProvider) Id() string   { return p.cfg.Name }
func (p *PythonProvider) Priority() int { return 10 }
func (p *PythonProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, pythonKeywords)
}

func (p *PythonProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	cycle, minors, ok := resolveCycle(pythonCycles, fingerprint.ProductCode(fp), fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.9, "https://devguide.python.org/versions/")
}
