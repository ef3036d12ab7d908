package provider

import (
	"context"
	"strings"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var oracleKeywords = []string{"oracle", "weblogic", "oracle database", "oracle db"}

// oracleCycles covers Oracle Database releases. Oracle's own "c"
// release suffix (e.g. "19c", and the "ai" of "23ai") is stripped by
// Lookup itself before comparing; cycle IDs here keep it for display.
var oracleCycles = []Cycle{
	{ID: "12c", ReleaseDate: "2013-06-25", SupportEndDate: "2022-07-31", EOLDate: "2022-07-31"},
	{ID: "18c", ReleaseDate: "2018-02-12", SupportEndDate: "2021-06-30", EOLDate: "2021-06-30"},
	{ID: "19c", ReleaseDate: "2019-04-26", SupportEndDate: "2024-04-30", EOLDate: "2027-04-30"},
	{ID: "21c", ReleaseDate: "2021-08-20", SupportEndDate: "2024-04-30", EOLDate: "2024-04-30"},
	{ID: "23ai", ReleaseDate: "2024-05-02", SupportEndDate: "2029-04-30", EOLDate: "2029-04-30"},
}

// OracleProvider implements Provider for Oracle Database.
type OracleProvider struct{ cfg ProviderConfig }

func NewOracleProvider(cfg ProviderConfig) *OracleProvider {
	if cfg.Name == "" {
		cfg.Name = "oracle"
	}
	return &OracleProvider{cfg: cfg}
}

func (p *OracleProvider) Id() string   { return p.cfg.Name }
func (p *OracleProvider) Priority() int { return 10 }
func (p *OracleProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, oracleKeywords)
}

func (p *OracleProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	v := strings.TrimSuffix(strings.ToLower(fp.Version), "c")
	var cycle *Cycle
	for i := range oracleCycles {
		id := strings.TrimSuffix(strings.TrimSuffix(oracleCycles[i].ID, "c"), "ai")
		if id == v || oracleCycles[i].ID == fp.Version {
			cycle = &oracleCycles[i]
			break
		}
	}
	if cycle == nil {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResult(p.Id(), fp, *cycle, 0.9, "https://www.oracle.com/database/technologies/appendix-a.html")
}
