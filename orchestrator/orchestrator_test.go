package orchestrator_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vigil-eol/advisor/cache"
	"github.com/vigil-eol/advisor/config"
	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
	"github.com/vigil-eol/advisor/orchestrator"
	"github.com/vigil-eol/advisor/provider"
	"github.com/vigil-eol/advisor/router"
	"github.com/vigil-eol/advisor/telemetry"
)

// fakeProvider is a minimal provider.Provider whose Lookup is scripted
// per-test and whose call count is observable, to check cascade
// monotonicity without any network dependency.
type fakeProvider struct {
	id       string
	priority int
	calls    int32
	result   *model.LookupResult
	err      error
}

func (f *fakeProvider) Id() string                                 { return f.id }
func (f *fakeProvider) Priority() int                               { return f.priority }
func (f *fakeProvider) Supports(fingerprint.Fingerprint) bool       { return true }
func (f *fakeProvider) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		WorkerPoolSize:         4,
		DefaultProviderTimeout: 2 * time.Second,
		ProviderTimeouts:       map[string]time.Duration{},
		CacheTTL:               time.Hour,
		CacheNegativeTTL:       time.Minute,
	}
}

func newTestOrchestrator(t *testing.T, registry *provider.Registry) *orchestrator.Orchestrator {
	t.Helper()
	cfg := testConfig()
	cacheEng := cache.NewEngine(cache.WithTTL(cfg.CacheTTL), cache.WithNegativeTTL(cfg.CacheNegativeTTL))
	rt := router.NewRouter(registry)
	rec := telemetry.NewRecorder(100)
	return orchestrator.New(cfg, registry, cacheEng, rt, nil, rec)
}

// TestCascadeStopsOnFirstConfidentSuccess proves a later provider in
// the cascade never runs once an earlier one clears the stop-rule's
// confidence threshold.
func TestCascadeStopsOnFirstConfidentSuccess(t *testing.T) {
	vendor := &fakeProvider{
		id: "vendor", priority: 1,
		result: &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical, Confidence: 0.9, Source: "vendor"},
	}
	aggregator := &fakeProvider{
		id: "endoflife.date", priority: 100,
		result: &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical, Confidence: 0.95, Source: "endoflife.date"},
	}

	registry := provider.NewRegistry()
	registry.Register(vendor)
	registry.Register(aggregator)

	orch := newTestOrchestrator(t, registry)

	outcome, err := orch.Run(context.Background(), orchestrator.Request{Message: "postgresql 9.6"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Report == nil || len(outcome.Report.Entries) != 1 {
		t.Fatalf("expected exactly one report entry, got %+v", outcome.Report)
	}
	if atomic.LoadInt32(&vendor.calls) != 1 {
		t.Fatalf("expected vendor to be called exactly once, got %d", vendor.calls)
	}
	if atomic.LoadInt32(&aggregator.calls) != 0 {
		t.Fatalf("expected the aggregator to never be called once vendor cleared the threshold, got %d calls", aggregator.calls)
	}
	if outcome.Report.Entries[0].Result.Source != "vendor" {
		t.Fatalf("expected the vendor result to win, got source %q", outcome.Report.Entries[0].Result.Source)
	}
}

// TestCascadeFallsThroughOnLowConfidence proves the cascade keeps
// going past a success that doesn't clear the stop-rule's threshold.
func TestCascadeFallsThroughOnLowConfidence(t *testing.T) {
	vendor := &fakeProvider{
		id: "vendor", priority: 1,
		result: &model.LookupResult{Success: true, Status: model.StatusUnknown, Risk: model.RiskUnknown, Confidence: 0.2, Source: "vendor"},
	}
	aggregator := &fakeProvider{
		id: "endoflife.date", priority: 100,
		result: &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical, Confidence: 0.8, Source: "endoflife.date"},
	}

	registry := provider.NewRegistry()
	registry.Register(vendor)
	registry.Register(aggregator)

	orch := newTestOrchestrator(t, registry)

	outcome, err := orch.Run(context.Background(), orchestrator.Request{Message: "postgresql 9.6"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if atomic.LoadInt32(&aggregator.calls) != 1 {
		t.Fatalf("expected the aggregator to run after a low-confidence vendor result, got %d calls", aggregator.calls)
	}
	if outcome.Report.Entries[0].Result.Source != "endoflife.date" {
		t.Fatalf("expected the higher-confidence aggregator result to win, got source %q", outcome.Report.Entries[0].Result.Source)
	}
}

// TestConfirmGateBlocksThenRefuses exercises the full C9 handshake: an
// unconfirmed destructive message returns NeedsConfirmation, and an
// explicit confirmed=false returns Refused without running any lookup.
func TestConfirmGateBlocksThenRefuses(t *testing.T) {
	vendor := &fakeProvider{id: "vendor", priority: 1, result: &model.LookupResult{Success: true, Confidence: 0.9}}
	registry := provider.NewRegistry()
	registry.Register(vendor)
	orch := newTestOrchestrator(t, registry)

	outcome, err := orch.Run(context.Background(), orchestrator.Request{Message: "purge the cache"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.NeedsConfirmation {
		t.Fatalf("expected NeedsConfirmation for a destructive message with no confirm payload")
	}

	outcome, err = orch.Run(context.Background(), orchestrator.Request{
		Confirm: &orchestrator.Confirm{Confirmed: false, OriginalMessage: "purge the cache"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.Refused {
		t.Fatalf("expected Refused when confirmed=false")
	}
	if atomic.LoadInt32(&vendor.calls) != 0 {
		t.Fatalf("expected no provider calls on a refused request")
	}
}

// TestConfirmGateProceedsWhenConfirmed proves a confirmed=true request
// executes against the original message.
func TestConfirmGateProceedsWhenConfirmed(t *testing.T) {
	vendor := &fakeProvider{
		id: "vendor", priority: 1,
		result: &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Risk: model.RiskCritical, Confidence: 0.9, Source: "vendor"},
	}
	registry := provider.NewRegistry()
	registry.Register(vendor)
	orch := newTestOrchestrator(t, registry)

	outcome, err := orch.Run(context.Background(), orchestrator.Request{
		Confirm: &orchestrator.Confirm{Confirmed: true, OriginalMessage: "purge the cache, postgresql 9.6"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Refused || outcome.NeedsConfirmation {
		t.Fatalf("expected the request to proceed once confirmed, got %+v", outcome)
	}
}

// TestCancellationStopsCascade proves an already-cancelled context
// short-circuits the provider loop rather than running every provider.
func TestCancellationStopsCascade(t *testing.T) {
	vendor := &fakeProvider{id: "vendor", priority: 1, result: &model.LookupResult{Success: true, Confidence: 0.9}}
	registry := provider.NewRegistry()
	registry.Register(vendor)
	orch := newTestOrchestrator(t, registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := orch.Run(ctx, orchestrator.Request{Message: "postgresql 9.6"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Report == nil || len(outcome.Report.Entries) != 1 {
		t.Fatalf("expected one entry even when cancelled, got %+v", outcome.Report)
	}
	entry := outcome.Report.Entries[0]
	if entry.Category != model.CategoryFailed {
		t.Fatalf("expected a cancelled run to produce a failed entry, got category %q", entry.Category)
	}
	if atomic.LoadInt32(&vendor.calls) != 0 {
		t.Fatalf("expected a cancelled run to skip the provider call entirely, got %d calls", vendor.calls)
	}
}
