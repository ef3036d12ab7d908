package reporter_test

import (
	"strings"
	"testing"
	"time"

	"github.com/vigil-eol/advisor/model"
	"github.com/vigil-eol/advisor/reporter"
)

func sampleReport() *model.AggregateReport {
	eolDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	report := model.NewAggregateReport("sess-1")
	report.Add(model.ReportEntry{
		Asset: model.Asset{Name: "windows server", Version: "2012", Kind: model.AssetOS},
		Result: &model.LookupResult{
			Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical,
			EOLDate: &eolDate, Source: "microsoft", Confidence: 0.95,
		},
		Category: model.CategoryEndOfLife,
	})
	report.Add(model.ReportEntry{
		Asset: model.Asset{Name: "ubuntu", Version: "20.04", Kind: model.AssetOS},
		Result: &model.LookupResult{
			Success: true, Status: model.StatusActive, Risk: model.RiskLow,
			Source: "ubuntu", Confidence: 0.9,
		},
		Category: model.CategorySupported,
	})
	return report
}

func TestRenderIsDeterministic(t *testing.T) {
	r1 := reporter.Render(sampleReport())
	r2 := reporter.Render(sampleReport())
	if r1 != r2 {
		t.Fatalf("expected identical markdown for identical input, got:\n%s\n---\n%s", r1, r2)
	}
}

func TestRenderOrderIndependentOfInsertion(t *testing.T) {
	a := sampleReport()

	b := model.NewAggregateReport("sess-1")
	// insert in reverse order
	b.Add(a.Entries[1])
	b.Add(a.Entries[0])

	if reporter.Render(a) != reporter.Render(b) {
		t.Fatalf("expected render to be independent of entry insertion order")
	}
}

func TestRenderIncludesAttentionSection(t *testing.T) {
	out := reporter.Render(sampleReport())
	if !strings.Contains(out, "## ATTENTION REQUIRED") {
		t.Fatalf("expected an ATTENTION REQUIRED section, got:\n%s", out)
	}
	if !strings.Contains(out, "### End of Life") {
		t.Fatalf("expected an End of Life subsection, got:\n%s", out)
	}
	if !strings.Contains(out, "windows server 2012") {
		t.Fatalf("expected the EOL asset to be named, got:\n%s", out)
	}
}

func TestRenderOverflowLine(t *testing.T) {
	report := model.NewAggregateReport("sess-2")
	for i := 0; i < 15; i++ {
		report.Add(model.ReportEntry{
			Asset: model.Asset{Name: "asset", Version: string(rune('a' + i))},
			Result: &model.LookupResult{
				Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical,
			},
			Category: model.CategoryEndOfLife,
		})
	}
	out := reporter.Render(report)
	if !strings.Contains(out, "more not shown") {
		t.Fatalf("expected an overflow line for >10 EOL entries, got:\n%s", out)
	}
}

func TestRenderEscapesMarkdown(t *testing.T) {
	report := model.NewAggregateReport("sess-3")
	report.Add(model.ReportEntry{
		Asset:    model.Asset{Name: "weird_*name*[x]"},
		Result:   &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical},
		Category: model.CategoryEndOfLife,
	})
	out := reporter.Render(report)
	if strings.Contains(out, "_*name*[x]") {
		t.Fatalf("expected markdown special characters to be escaped, got:\n%s", out)
	}
	if !strings.Contains(out, `\_\*name\*\[x\]`) {
		t.Fatalf("expected escaped asset name, got:\n%s", out)
	}
}

func TestRenderNoAssetsHasNoAttentionSection(t *testing.T) {
	out := reporter.Render(model.NewAggregateReport("sess-4"))
	if strings.Contains(out, "ATTENTION REQUIRED") {
		t.Fatalf("expected no ATTENTION section for an empty report, got:\n%s", out)
	}
	if !strings.Contains(out, "0 asset(s) checked") {
		t.Fatalf("expected a zero-asset summary line, got:\n%s", out)
	}
}
