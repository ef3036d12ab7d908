package provider

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Cycle is one entry in a vendor provider's static knowledge table.
type Cycle struct {
	ID                string
	ReleaseDate       string // YYYY-MM-DD
	SupportEndDate    string
	EOLDate           string
	ExtendedEOLDate   string
	LatestPatch       string
	LTS               bool
}

// versionTuple is a numeric decomposition of a version string used for
// prefix matching. Non-numeric suffix tokens (LTS, "c", year codes) are
// stripped before tupling and recorded separately.
type versionTuple struct {
	parts  []int
	suffix string
}

func parseTuple(v string) (versionTuple, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return versionTuple{}, false
	}

	suffix := ""
	for _, tok := range []string{"LTS", "lts", "c"} {
		if strings.HasSuffix(v, tok) {
			suffix = tok
			v = strings.TrimSpace(strings.TrimSuffix(v, tok))
			break
		}
	}

	fields := strings.FieldsFunc(v, func(r rune) bool { return r == '.' })
	var parts []int
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return versionTuple{}, false
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 {
		return versionTuple{}, false
	}
	return versionTuple{parts: parts, suffix: suffix}, true
}

// isPrefix reports whether query is a tuple-prefix of candidate, e.g.
// [12] is a prefix of [12, 3], and [12, 3] is a prefix of [12, 3].
func (q versionTuple) isPrefix(candidate versionTuple) bool {
	if len(q.parts) > len(candidate.parts) {
		return false
	}
	for i, p := range q.parts {
		if candidate.parts[i] != p {
			return false
		}
	}
	return true
}

// MatchCycle implements the version matching policy: numeric
// tuple comparison with prefix acceptance, a bare major selecting the
// earliest matching cycle rather than the latest patch, and a semver/v3
// fallback for cycle ids the numeric tuple parser rejects but semver
// accepts. It returns the matched cycle and the full set of
// cycles that share the query's major version (for extra.minor_versions).
func MatchCycle(cycles []Cycle, query string) (matched *Cycle, minorVersions []string, ok bool) {
	if query == "" {
		return nil, nil, false
	}

	queryTuple, validTuple := parseTuple(query)
	if !validTuple {
		// Opaque codes like "2019 Datacenter" or "ubuntu-20.04" match
		// by exact cycle id instead of numeric tuple.
		for i := range cycles {
			if strings.EqualFold(cycles[i].ID, query) {
				return &cycles[i], nil, true
			}
		}
		return nil, nil, false
	}

	type candidate struct {
		cycle Cycle
		tuple versionTuple
	}
	var candidates []candidate
	for _, c := range cycles {
		ct, valid := parseTuple(c.ID)
		if !valid {
			if sv, err := semver.NewVersion(c.ID); err == nil {
				ct = versionTuple{parts: []int{int(sv.Major()), int(sv.Minor()), int(sv.Patch())}}
				valid = true
			}
		}
		if !valid {
			continue
		}
		if queryTuple.isPrefix(ct) {
			candidates = append(candidates, candidate{cycle: c, tuple: ct})
		}
	}
	if len(candidates) == 0 {
		return nil, nil, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].tuple.parts, candidates[j].tuple.parts
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})

	// Bare major query ([major] only): earliest cycle in that major wins.
	if len(queryTuple.parts) == 1 {
		for i := range candidates {
			minorVersions = append(minorVersions, candidates[i].cycle.ID)
		}
		first := candidates[0].cycle
		return &first, minorVersions, true
	}

	// Full version: exact tuple match, preferring the longest/most
	// specific match, which the ascending sort above leaves at the end.
	best := candidates[len(candidates)-1].cycle
	return &best, nil, true
}
