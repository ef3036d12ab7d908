package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var vmwareKeywords = []string{"vmware", "vsphere", "esxi", "vcenter"}

var vmwareCycles = []Cycle{
	{ID: "esxi-6.7", ReleaseDate: "2018-04-17", SupportEndDate: "2022-11-15", EOLDate: "2023-10-15"},
	{ID: "esxi-7.0", ReleaseDate: "2020-04-02", SupportEndDate: "2025-04-02", EOLDate: "2027-04-02"},
	{ID: "esxi-8.0", ReleaseDate: "2022-10-11", SupportEndDate: "2027-10-11", EOLDate: "2029-10-11"},
	{ID: "vcenter-7.0", ReleaseDate: "2020-04-02", SupportEndDate: "2025-04-02", EOLDate: "2027-04-02"},
	{ID: "vcenter-8.0", ReleaseDate: "2022-10-11", SupportEndDate: "2027-10-11", EOLDate: "2029-10-11"},
}

// VMwareProvider implements Provider for ESXi and vCenter.
type VMwareProvider struct{ cfg ProviderConfig }

func NewVMwareProvider(cfg ProviderConfig) *VMwareProvider {
	if cfg.Name == "" {
		cfg.Name = "vmware"
	}
	return &VMwareProvider{cfg: cfg}
}

func (p *VMwareProvider) Id() string   { return p.cfg.Name }
func (p *VMwareProvider) Priority() int { return 10 }
func (p *VMwareProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, vmwareKeywords)
}

func (p *VMwareProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}

	var code string
	switch {
	case containsAny(fp.Name, []string{"vcenter"}):
		code = "vcenter-" + fp.Version
	default:
		code = "esxi-" + fp.Version
	}
	cycle, minors, ok := resolveCycle(vmwareCycles, code, fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.9, "https://lifecycle.vmware.com/")
}
