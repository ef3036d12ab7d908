// Package inventory collects OS and software assets from a telemetry
// backend and normalizes their free-form name strings into Assets via
// a regex ladder.
package inventory

import (
	"context"
	"regexp"
	"strings"

	"github.com/vigil-eol/advisor/model"
)

// Row is one raw record the telemetry backend returns: a computer
// plus the free-form name/version strings it reported.
type Row struct {
	Computer   string
	RawName    string
	RawVersion string
}

// Backend is the outbound contract: QueryOSHeartbeat and
// QuerySoftwareInventory, both windowed and limited.
type Backend interface {
	QueryOSHeartbeat(ctx context.Context, windowDays int, limit int) ([]Row, error)
	QuerySoftwareInventory(ctx context.Context, windowDays int, limit int) ([]Row, error)
}

// Collector runs the regex-ladder normalizer over a Backend's raw
// rows and de-duplicates by (computer, name, version).
type Collector struct {
	backend Backend
}

func NewCollector(backend Backend) *Collector {
	return &Collector{backend: backend}
}

// CollectOS returns normalized OS Assets observed in the last
// windowDays.
func (c *Collector) CollectOS(ctx context.Context, windowDays int) ([]model.Asset, error) {
	rows, err := c.backend.QueryOSHeartbeat(ctx, windowDays, 0)
	if err != nil {
		return nil, err
	}
	return dedupe(normalizeRows(rows, model.AssetOS, parseOSName)), nil
}

// CollectSoftware returns normalized software Assets observed in the
// last windowDays.
func (c *Collector) CollectSoftware(ctx context.Context, windowDays int) ([]model.Asset, error) {
	rows, err := c.backend.QuerySoftwareInventory(ctx, windowDays, 0)
	if err != nil {
		return nil, err
	}
	return dedupe(normalizeRows(rows, model.AssetSoftware, parseSoftwareName)), nil
}

type parseFunc func(raw string) (name, version string, extra map[string]any)

func normalizeRows(rows []Row, kind model.AssetKind, parse parseFunc) []model.Asset {
	assets := make([]model.Asset, 0, len(rows))
	for _, r := range rows {
		combined := r.RawName
		if r.RawVersion != "" {
			combined = strings.TrimSpace(r.RawName + " " + r.RawVersion)
		}
		name, version, extra := parse(combined)
		if version == "" {
			version = r.RawVersion
		}
		if extra == nil {
			extra = map[string]any{}
		}
		extra["raw_string"] = combined
		extra["computer"] = r.Computer
		assets = append(assets, model.Asset{
			Name:      name,
			Version:   version,
			Kind:      kind,
			SourceTag: "inventory",
			Extra:     extra,
		})
	}
	return assets
}

func dedupe(assets []model.Asset) []model.Asset {
	seen := make(map[string]bool, len(assets))
	out := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		computer, _ := a.Extra["computer"].(string)
		key := computer + "|" + a.Name + "|" + a.Version
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

var (
	windowsServerPattern = regexp.MustCompile(`(?i)(Windows Server)\s+(\d{4})(?:\s+([^|]+))?`)
	ubuntuPattern        = regexp.MustCompile(`(?i)(Ubuntu)\s+(\d+\.\d+)`)
	anchoredOSPattern    = regexp.MustCompile(`(?i)(RHEL|Red Hat Enterprise Linux|CentOS|Debian|macOS|Mac OS X)\s+(\d+(?:\.\d+)*)`)
	fallbackPattern      = regexp.MustCompile(`(\w+)\s+(\d+(?:\.\d+)*)`)

	softwareVersionV   = regexp.MustCompile(`(?i)^(.+?)\s+v(\d+(?:\.\d+)*)$`)
	softwareVersionDot = regexp.MustCompile(`(?i)^(.+?)\s+(\d+\.\d+(?:\.\d+)*)$`)
	softwareYear       = regexp.MustCompile(`(?i)^(.+?)\s+(\d{4})$`)
	softwareDash       = regexp.MustCompile(`(?i)^(.+?)\s*-\s*(\d+(?:\.\d+)*)$`)
)

// parseOSName runs the OS regex ladder: Windows
// Server gets a special pattern that keeps the year in the name and
// captures the edition separately, Ubuntu/RHEL/CentOS/Debian/macOS get
// anchored patterns, everything else falls back to a generic
// "word number" split, and unparseable strings keep the whole string
// as the name with no version.
func parseOSName(raw string) (name, version string, extra map[string]any) {
	raw = strings.TrimSpace(raw)

	if m := windowsServerPattern.FindStringSubmatch(raw); m != nil {
		name = m[1] + " " + m[2]
		extra = map[string]any{}
		if m[3] != "" {
			extra["edition"] = strings.TrimSpace(m[3])
		}
		return name, "", extra
	}
	if m := ubuntuPattern.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	if m := anchoredOSPattern.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	if m := fallbackPattern.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	return raw, "", nil
}

// parseSoftwareName mirrors the OS ladder with software-oriented
// patterns: "name vX.Y.Z", "name X.Y", "name 2019" (year-versioned
// products), and "name - version".
func parseSoftwareName(raw string) (name, version string, extra map[string]any) {
	raw = strings.TrimSpace(raw)

	if m := softwareVersionV.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	if m := softwareVersionDot.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	if m := softwareDash.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	if m := softwareYear.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], nil
	}
	return raw, "", nil
}
