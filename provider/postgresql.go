package provider

import (
	"context"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

var postgresqlKeywords = []string{"postgresql", "postgres", "psql"}

// postgresqlCycles is the full per-minor-version table: a bare-major
// query for "12" must resolve to "12.0" with every 12.x minor listed
// in extra.minor_versions.
var postgresqlCycles = []Cycle{
	{ID: "10.0", ReleaseDate: "2017-10-05", EOLDate: "2022-11-10"},
	{ID: "10.1", ReleaseDate: "2017-11-09", EOLDate: "2022-11-10"},
	{ID: "11.0", ReleaseDate: "2018-10-18", EOLDate: "2023-11-09"},
	{ID: "11.1", ReleaseDate: "2018-11-08", EOLDate: "2023-11-09"},
	{ID: "12.0", ReleaseDate: "2019-10-03", EOLDate: "2024-11-14"},
	{ID: "12.1", ReleaseDate: "2019-11-14", EOLDate: "2024-11-14"},
	{ID: "12.2", ReleaseDate: "2020-02-13", EOLDate: "2024-11-14"},
	{ID: "12.3", ReleaseDate: "2020-05-07", EOLDate: "2024-11-14"},
	{ID: "12.4", ReleaseDate: "2020-08-13", EOLDate: "2024-11-14"},
	{ID: "12.5", ReleaseDate: "2020-11-12", EOLDate: "2024-11-14"},
	{ID: "12.6", ReleaseDate: "2021-02-11", EOLDate: "2024-11-14"},
	{ID: "12.7", ReleaseDate: "2021-05-13", EOLDate: "2024-11-14"},
	{ID: "12.8", ReleaseDate: "2021-08-12", EOLDate: "2024-11-14"},
	{ID: "12.9", ReleaseDate: "2021-11-11", EOLDate: "2024-11-14"},
	{ID: "12.10", ReleaseDate: "2022-02-10", EOLDate: "2024-11-14"},
	{ID: "12.11", ReleaseDate: "2022-05-12", EOLDate: "2024-11-14"},
	{ID: "12.12", ReleaseDate: "2022-08-11", EOLDate: "2024-11-14"},
	{ID: "12.13", ReleaseDate: "2022-11-10", EOLDate: "2024-11-14"},
	{ID: "12.14", ReleaseDate: "2023-02-09", EOLDate: "2024-11-14"},
	{ID: "12.15", ReleaseDate: "2023-05-11", EOLDate: "2024-11-14"},
	{ID: "12.16", ReleaseDate: "2023-08-10", EOLDate: "2024-11-14"},
	{ID: "12.17", ReleaseDate: "2023-11-09", EOLDate: "2024-11-14"},
	{ID: "13.0", ReleaseDate: "2020-09-24", EOLDate: "2025-11-13"},
	{ID: "14.0", ReleaseDate: "2021-09-30", EOLDate: "2026-11-12"},
	{ID: "15.0", ReleaseDate: "2022-10-13", EOLDate: "2027-11-11"},
	{ID: "16.0", ReleaseDate: "2023-09-14", EOLDate: "2028-11-09"},
	{ID: "17.0", ReleaseDate: "2024-09-26", EOLDate: "2029-11-08"},
}

// PostgreSQLProvider implements Provider for PostgreSQL.
type PostgreSQLProvider struct{ cfg ProviderConfig }

func NewPostgreSQLProvider(cfg ProviderConfig) *PostgreSQLProvider {
	if cfg.Name == "" {
		cfg.Name = "postgresql"
	}
	return &PostgreSQLProvider{cfg: cfg}
}

func (p *PostgreSQLProvider) Id() string   { return p.cfg.Name }
func (p *PostgreSQLProvider) Priority() int { return 10 }
func (p *PostgreSQLProvider) Supports(fp fingerprint.Fingerprint) bool {
	return containsAny(fp.Name, postgresqlKeywords)
}

func (p *PostgreSQLProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	if p.cfg.Disabled {
		return nil, &model.ProviderError{Kind: model.ErrDisabled, Provider: p.Id()}
	}
	cycle, minors, ok := resolveCycle(postgresqlCycles, fingerprint.ProductCode(fp), fp)
	if !ok {
		return nil, &model.ProviderError{Kind: model.ErrNotFound, Provider: p.Id(), Message: "no cycle for " + fp.String()}
	}
	return cycleToResultWithMinors(p.Id(), fp, *cycle, minors, 0.95, "https://www.postgresql.org/support/versioning/")
}
