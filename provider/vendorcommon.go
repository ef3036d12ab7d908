package provider

import (
	"strings"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// containsAny reports whether name contains any of the given
// case-insensitive keywords. Shared by every vendor-specific
// provider's Supports predicate.
func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// matchByCode looks up a cycle by exact product code first, then falls
// back to MatchCycle's version-tuple policy against the fingerprint's
// version, so both "ubuntu-20.04" style exact codes and bare "20.04"
// version queries resolve to the same table.
func matchByCode(cycles []Cycle, code string, fp fingerprint.Fingerprint) (*Cycle, bool) {
	cycle, _, ok := resolveCycle(cycles, code, fp)
	return cycle, ok
}

// resolveCycle is matchByCode plus the minor-version list MatchCycle
// produces for a bare-major query (the PostgreSQL 12 case: query "12"
// resolves to cycle "12.0" with extra.minor_versions listing every
// 12.x cycle).
func resolveCycle(cycles []Cycle, code string, fp fingerprint.Fingerprint) (*Cycle, []string, bool) {
	for i := range cycles {
		if strings.EqualFold(cycles[i].ID, code) {
			return &cycles[i], nil, true
		}
	}
	if fp.Version == "" {
		return nil, nil, false
	}
	return MatchCycle(cycles, fp.Version)
}

// parseCycleDate parses the YYYY-MM-DD dates used in every vendor's
// static table. An empty string is not an error — it means the vendor
// table has no value for that field.
func parseCycleDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// cycleToResult builds the invariant LookupResult shape from a
// matched static-table Cycle. confidence is the caller's
// authoritativeness score for this data source (static vendor tables
// score highest in the cascade). eolDate prefers the extended/final
// EOL date over the mainstream support end date as the terminal date.
func cycleToResult(source string, fp fingerprint.Fingerprint, c Cycle, confidence float64, sourceURL string) (*model.LookupResult, error) {
	eol := parseCycleDate(c.EOLDate)
	if eol == nil {
		eol = parseCycleDate(c.ExtendedEOLDate)
	}
	supportEnd := parseCycleDate(c.SupportEndDate)
	release := parseCycleDate(c.ReleaseDate)

	now := time.Now()
	status, risk := model.DeriveStatusRisk(eol, now)

	extra := map[string]any{}
	if c.LTS {
		extra["lts"] = true
	}
	if c.ExtendedEOLDate != "" {
		extra["extended_support"] = c.ExtendedEOLDate
	}
	extra["cycle"] = c.ID

	return &model.LookupResult{
		Success:        true,
		SoftwareName:   fp.Name,
		Version:        c.ID,
		EOLDate:        eol,
		SupportEndDate: supportEnd,
		ReleaseDate:    release,
		LatestVersion:  c.LatestPatch,
		Status:         status,
		Risk:           risk,
		Confidence:     confidence,
		Source:         source,
		SourceURL:      sourceURL,
		FetchedAt:      now,
		Extra:          extra,
	}, nil
}

// cycleToResultWithMinors is cycleToResult plus extra.minor_versions,
// used by providers that resolve a bare-major query to a cascade of
// candidate cycles (the PostgreSQL 12 case).
func cycleToResultWithMinors(source string, fp fingerprint.Fingerprint, c Cycle, minors []string, confidence float64, sourceURL string) (*model.LookupResult, error) {
	res, err := cycleToResult(source, fp, c, confidence, sourceURL)
	if err != nil {
		return nil, err
	}
	if len(minors) > 0 {
		res.Extra["minor_versions"] = minors
	}
	return res, nil
}
