package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var nodejsKeywords = []string{"node", "nodejs", "node.js"}

var nodejsCycles = []Cycle{
	{ID: "14.0.0", ReleaseDate: "2020-04-21", EOLDate: "2023-04-30"},
	{ID: "16.0.0", ReleaseDate: "2021-04-20", EOLDate: "2023-09-11"},
	{ID: "18.0.0", ReleaseDate: "2022-04-19", EOLDate: "2025-04-30", LTS: true},
	{ID: "20.0.0", ReleaseDate: "2023-04-18", EOLDate: "2026-04-30", LTS: true},
	{ID: "22.0.0", ReleaseDate: "2024-04-24", EOLDate: "2027-04-30", LTS: true},
}

// NodeJSProvider implements Provider for Node.js.
type NodeJSProvider struct{ cfg ProviderConfig }

func NewNodeJSProvider(cfg ProviderConfig) *NodeJSProvider {
	if cfg.Name == "" {
		cfg.Name = "nodejs"
	}
	return &NodeJSProvider{cfg: cfg}
}

func (p *NodeJSProvider) Id() string   { return p.cfg.Name }
func (p *NodeJSProvider) Priority() int { return 10 }
func (p *NodeJSProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, nodejsKeywords)
}

func (p *NodeJSProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	cycle, minors, ok := resolveCycle(nodejsCycles, fingerprint.ProductCode(fp), fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.9, "https://nodejs.org/en/about/previous-releases")
}
