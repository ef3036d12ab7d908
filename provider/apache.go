package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var apacheKeywords = []string{"apache", "httpd", "tomcat", "apache2"}

var apacheCycles = []Cycle{
	{ID: "httpd-2.4", ReleaseDate: "2012-02-21", LatestPatch: "2.4.62"},
	{ID: "tomcat-9", ReleaseDate: "2017-12-20", EOLDate: "2025-03-31"},
	{ID: "tomcat-10", ReleaseDate: "2021-09-30", EOLDate: "2027-03-31"},
	{ID: "tomcat-11", ReleaseDate: "2024-10-01", EOLDate: "2031-03-31"},
}

// ApacheProvider implements Provider for the Apache HTTP Server and
// Apache Tomcat. httpd itself carries no fixed EOL (it is maintained
// indefinitely on its single active branch), so its cycle has no
// EOLDate — DeriveStatusRisk treats that as unknown/unknown.
type ApacheProvider struct{ cfg ProviderConfig }

func NewApacheProvider(cfg ProviderConfig) *ApacheProvider {
	if cfg.Name == "" {
		cfg.Name = "apache"
	}
	return &ApacheProvider{cfg: cfg}
}

func (p *ApacheProvider) Id() string   { return p.cfg.Name }
func (p *ApacheProvider) Priority() int { return 10 }
func (p *ApacheProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, apacheKeywords)
}

func (p *ApacheProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	code := fingerprint.ProductCode(fp)
	cycle, minors, ok := resolveCycle(apacheCycles, code, fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.85, "https://httpd.apache.org/")
}
