package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var ubuntuKeywords = []string{"ubuntu"}

var ubuntuCycles = []Cycle{
	{ID: "ubuntu-16.04", ReleaseDate: "2016-04-21", SupportEndDate: "2021-04-30", EOLDate: "2021-04-30", ExtendedEOLDate: "2024-04-30", LTS: true},
	{ID: "ubuntu-18.04", ReleaseDate: "2018-04-26", SupportEndDate: "2023-05-31", EOLDate: "2023-05-31", ExtendedEOLDate: "2028-04-30", LTS: true},
	{ID: "ubuntu-20.04", ReleaseDate: "2020-04-23", SupportEndDate: "2025-05-29", EOLDate: "2025-05-29", ExtendedEOLDate: "2030-04-02", LTS: true},
	{ID: "ubuntu-22.04", ReleaseDate: "2022-04-21", SupportEndDate: "2027-06-01", EOLDate: "2027-06-01", ExtendedEOLDate: "2032-04-21", LTS: true},
	{ID: "ubuntu-24.04", ReleaseDate: "2024-04-25", SupportEndDate: "2029-05-31", EOLDate: "2029-05-31", ExtendedEOLDate: "2034-04-25", LTS: true},
	{ID: "ubuntu-23.10", ReleaseDate: "2023-10-12", SupportEndDate: "2024-07-11", EOLDate: "2024-07-11", LTS: false},
}

// UbuntuProvider implements Provider for Ubuntu LTS and interim releases.
type UbuntuProvider struct{ cfg ProviderConfig }

func NewUbuntuProvider(cfg ProviderConfig) *UbuntuProvider {
	if cfg.Name == "" {
		cfg.Name = "ubuntu"
	}
	return &UbuntuProvider{cfg: cfg}
}

func (p *UbuntuProvider) Id() string   { return p.cfg.Name }
func (p *UbuntuProvider) Priority() int { return 10 }
func (p *UbuntuProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, ubuntuKeywords)
}

func (p *UbuntuProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	code := fingerprint.ProductCode(fp)
	cycle, minors, ok := resolveCycle(ubuntuCycles, code, fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.95, "https://ubuntu.com/about/release-cycle")
}
