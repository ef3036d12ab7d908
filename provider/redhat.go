package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var redhatKeywords = []string{"rhel", "red hat", "centos", "fedora"}

var redhatCycles = []Cycle{
	{ID: "rhel-7", ReleaseDate: "2014-06-10", SupportEndDate: "2024-06-30", EOLDate: "2024-06-30", ExtendedEOLDate: "2028-06-30"},
	{ID: "rhel-8", ReleaseDate: "2019-05-07", SupportEndDate: "2024-05-31", EOLDate: "2029-05-31", ExtendedEOLDate: "2032-05-31"},
	{ID: "rhel-9", ReleaseDate: "2022-05-17", SupportEndDate: "2027-05-31", EOLDate: "2032-05-31", ExtendedEOLDate: "2035-05-31"},
	{ID: "centos-7", ReleaseDate: "2014-07-07", SupportEndDate: "2024-06-30", EOLDate: "2024-06-30"},
	{ID: "centos-8", ReleaseDate: "2019-09-24", SupportEndDate: "2021-12-31", EOLDate: "2021-12-31"},
}

// RedHatProvider implements Provider for RHEL and its CentOS derivative.
type RedHatProvider struct{ cfg ProviderConfig }

func NewRedHatProvider(cfg ProviderConfig) *RedHatProvider {
	if cfg.Name == "" {
		cfg.Name = "redhat"
	}
	return &RedHatProvider{cfg: cfg}
}

func (p *RedHatProvider) Id() string   { return p.cfg.Name }
func (p *RedHatProvider) Priority() int { return 10 }
func (p *RedHatProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, redhatKeywords)
}

func (p *RedHatProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}

	cycles := redhatCycles
	var code string
	switch {
	case containsAny(fp.Name, []string{"centos"}):
		code = "centos-" + fp.Version
	default:
		code = "rhel-" + fp.Version
	}
	cycle, minors, ok := resolveCycle(cycles, code, fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.95, "https://access.redhat.com/support/policy/updates/errata")
}
