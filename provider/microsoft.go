package provider

import (
	"context"
	"strings"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// microsoftKeywords is the product keyword set Supports matches
// against, case-insensitively.
var microsoftKeywords = []string{
	"windows", "microsoft", "office", "exchange", "sql server", "mssqlserver",
	"azure", "sharepoint", "teams", "hyper-v", ".net", "iis",
}

// microsoftCycles is the embedded static knowledge table. Dates mirror
// the shape Microsoft's own Lifecycle pages publish: mainstream support
// end (SupportEndDate) and extended/final EOL (EOLDate).
var microsoftCycles = []Cycle{
	{ID: "windows-server-2016", ReleaseDate: "2016-10-15", SupportEndDate: "2022-01-11", EOLDate: "2027-01-12"},
	{ID: "windows-server-2019", ReleaseDate: "2018-11-13", SupportEndDate: "2024-01-09", EOLDate: "2029-01-09"},
	{ID: "windows-server-2022", ReleaseDate: "2021-08-18", SupportEndDate: "2026-10-13", EOLDate: "2031-10-14"},
	{ID: "windows-10", ReleaseDate: "2015-07-29", SupportEndDate: "2025-10-14", EOLDate: "2025-10-14"},
	{ID: "windows-11", ReleaseDate: "2021-10-05", SupportEndDate: "2027-10-12", EOLDate: "2027-10-12"},
	{ID: "sql-server-2016", ReleaseDate: "2016-06-01", SupportEndDate: "2021-07-13", EOLDate: "2026-07-14"},
	{ID: "sql-server-2017", ReleaseDate: "2017-10-02", SupportEndDate: "2022-10-11", EOLDate: "2027-10-12"},
	{ID: "sql-server-2019", ReleaseDate: "2019-11-04", SupportEndDate: "2025-02-28", EOLDate: "2030-01-08"},
	{ID: "sql-server-2022", ReleaseDate: "2022-11-16", SupportEndDate: "2028-01-11", EOLDate: "2033-01-11"},
}

// MicrosoftProvider implements Provider for Windows Server, Windows
// client, SQL Server, and the rest of the Microsoft product family.
type MicrosoftProvider struct {
	cfg ProviderConfig
}

// NewMicrosoftProvider constructs the Microsoft vendor connector.
func NewMicrosoftProvider(cfg ProviderConfig) *MicrosoftProvider {
	if cfg.Name == "" {
		cfg.Name = "microsoft"
	}
	return &MicrosoftProvider{cfg: cfg}
}

func (p *MicrosoftProvider) Id() string       { return p.cfg.Name }
func (p *MicrosoftProvider) Priority() int     { return 10 }

func (p *MicrosoftProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, microsoftKeywords)
}

// Lookup resolves a fingerprint against the static table only; no live
// fetch of the Microsoft Lifecycle page is made, so a table miss is
// not_found.
func (p *MicrosoftProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}

	code := fingerprint.ProductCode(fp)
	cycle, matched := matchByCode(microsoftCycles, code, fp)
	if !matched {
		// Windows Server variants carry an edition suffix ("2019
		// Datacenter") that ProductCode doesn't strip; retry on the
		// bare year when the name mentions "windows server".
		if strings.Contains(fp.Name, "windows server") && fp.Version != "" {
			yearCycle, _, ok := MatchCycle(windowsServerCyclesOnly(), fp.Version)
			if ok {
				cycle = yearCycle
				matched = true
			}
		}
	}
	if !matched {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}

	return cycleToResult(p.Id(), fp, *cycle, 0.95, "https://learn.microsoft.com/lifecycle/products/"+cycle.ID)
}

func windowsServerCyclesOnly() []Cycle {
	var out []Cycle
	for _, c := range microsoftCycles {
		if strings.HasPrefix(c.ID, "windows-server-") {
			out = append(out, c)
		}
	}
	return out
}
