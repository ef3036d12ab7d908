// Package reporter renders an AggregateReport into a fixed markdown
// layout. Render is a pure function — same report in, byte-identical
// markdown out — assembling output incrementally via strings.Builder
// rather than a templating package.
package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vigil-eol/advisor/model"
)

// topN bounds how many entries each section lists before collapsing
// the remainder into an overflow line.
const (
	attentionTopN = 10
	otherTopN     = 5
)

var riskRank = map[model.Risk]int{
	model.RiskCritical: 0,
	model.RiskHigh:      1,
	model.RiskMedium:    2,
	model.RiskLow:       3,
	model.RiskUnknown:   4,
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
	"`", "\\`",
)

func escape(s string) string { return markdownEscaper.Replace(s) }

// Render produces the full markdown report. The categories and their
// section order are fixed: ATTENTION REQUIRED (end-of-life then
// approaching-eol), Supported, Unknown, Failed, Recommendations.
func Render(report *model.AggregateReport) string {
	var b strings.Builder

	b.WriteString("# EOL Advisory Report\n\n")
	if report.SessionID != "" {
		fmt.Fprintf(&b, "Session: `%s`\n\n", report.SessionID)
	}

	total := len(report.Entries)
	fmt.Fprintf(&b, "%d asset(s) checked: %d end-of-life, %d approaching EOL, %d supported, %d unknown, %d failed.\n\n",
		total,
		report.Counts[model.CategoryEndOfLife],
		report.Counts[model.CategoryApproachingEOL],
		report.Counts[model.CategorySupported],
		report.Counts[model.CategoryUnknown],
		report.Counts[model.CategoryFailed],
	)

	eol := sortedByCategory(report, model.CategoryEndOfLife)
	approaching := sortedByCategory(report, model.CategoryApproachingEOL)

	if len(eol) > 0 || len(approaching) > 0 {
		b.WriteString("## ATTENTION REQUIRED\n\n")
		if len(eol) > 0 {
			b.WriteString("### End of Life\n\n")
			writeEntries(&b, eol, attentionTopN, writeEOLLine)
			b.WriteString("\n")
		}
		if len(approaching) > 0 {
			b.WriteString("### Approaching EOL\n\n")
			writeEntries(&b, approaching, attentionTopN, writeEOLLine)
			b.WriteString("\n")
		}
	}

	supported := sortedByCategory(report, model.CategorySupported)
	if len(supported) > 0 {
		b.WriteString("## Supported\n\n")
		writeEntries(&b, supported, otherTopN, writeSupportedLine)
		b.WriteString("\n")
	}

	unknown := sortedByCategory(report, model.CategoryUnknown)
	if len(unknown) > 0 {
		b.WriteString("## Unknown\n\n")
		writeEntries(&b, unknown, otherTopN, writeUnknownLine)
		b.WriteString("\n")
	}

	failed := sortedByCategory(report, model.CategoryFailed)
	if len(failed) > 0 {
		b.WriteString("## Failed\n\n")
		writeEntries(&b, failed, otherTopN, writeFailedLine)
		b.WriteString("\n")
	}

	recs := recommendations(len(eol), len(approaching), len(failed))
	if len(recs) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// sortedByCategory filters report.Entries to one category and sorts
// by (risk desc, name asc) so the same report always renders
// identically regardless of the concurrent dispatch order that
// produced it.
func sortedByCategory(report *model.AggregateReport, cat model.ReportCategory) []model.ReportEntry {
	var out []model.ReportEntry
	for _, e := range report.Entries {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := entryRisk(out[i]), entryRisk(out[j])
		if ri != rj {
			return riskRank[ri] < riskRank[rj]
		}
		return out[i].Asset.Name < out[j].Asset.Name
	})
	return out
}

func entryRisk(e model.ReportEntry) model.Risk {
	if e.Result != nil {
		return e.Result.Risk
	}
	return model.RiskUnknown
}

func writeEntries(b *strings.Builder, entries []model.ReportEntry, limit int, line func(*strings.Builder, model.ReportEntry)) {
	shown := entries
	overflow := 0
	if len(entries) > limit {
		shown = entries[:limit]
		overflow = len(entries) - limit
	}
	for _, e := range shown {
		line(b, e)
	}
	if overflow > 0 {
		fmt.Fprintf(b, "- _(%d more not shown)_\n", overflow)
	}
}

func assetLabel(a model.Asset) string {
	name := escape(a.Name)
	if a.Version == "" {
		return name
	}
	return name + " " + escape(a.Version)
}

func writeEOLLine(b *strings.Builder, e model.ReportEntry) {
	label := assetLabel(e.Asset)
	if e.Result == nil {
		fmt.Fprintf(b, "- **%s** — no result available\n", label)
		return
	}
	r := e.Result
	dateStr := "unknown date"
	if r.EOLDate != nil {
		dateStr = r.EOLDate.Format("2006-01-02")
	}
	source := "unknown source"
	if r.SourceURL != "" {
		source = fmt.Sprintf("[%s](%s)", escape(r.Source), r.SourceURL)
	} else if r.Source != "" {
		source = escape(r.Source)
	}
	fmt.Fprintf(b, "- **%s** — EOL %s (%s risk). Source: %s\n", label, dateStr, r.Risk, source)
}

func writeSupportedLine(b *strings.Builder, e model.ReportEntry) {
	label := assetLabel(e.Asset)
	if e.Result == nil {
		fmt.Fprintf(b, "- %s — supported\n", label)
		return
	}
	fmt.Fprintf(b, "- %s — supported, confidence %.2f (%s)\n", label, e.Result.Confidence, escape(e.Result.Source))
}

func writeUnknownLine(b *strings.Builder, e model.ReportEntry) {
	fmt.Fprintf(b, "- %s — status could not be determined\n", assetLabel(e.Asset))
}

func writeFailedLine(b *strings.Builder, e model.ReportEntry) {
	label := assetLabel(e.Asset)
	if len(e.Attempts) == 0 {
		fmt.Fprintf(b, "- %s — lookup failed\n", label)
		return
	}
	last := e.Attempts[len(e.Attempts)-1]
	fmt.Fprintf(b, "- %s — lookup failed after %d provider(s), last error: %s\n", label, len(e.Attempts), last.ErrorKind)
}

func recommendations(eolCount, approachingCount, failedCount int) []string {
	var recs []string
	if eolCount > 0 {
		recs = append(recs, "Plan immediate migration or upgrade for the end-of-life assets listed above — they no longer receive vendor patches.")
	}
	if approachingCount > 0 {
		recs = append(recs, "Schedule upgrades for the approaching-EOL assets before their support window closes.")
	}
	if failedCount > 0 {
		recs = append(recs, "Re-run the failed lookups once the affected providers recover, or confirm the asset names/versions are accurate.")
	}
	return recs
}
