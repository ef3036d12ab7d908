// Package orchestrator implements the request state machine:
// Classify -> GatherInventory -> ExtractAssets -> Dispatch ->
// ExecutePlan -> Aggregate. It is the one component that
// holds references to every other layer (classifier, inventory,
// router, provider registry, cache, telemetry) and owns the bounded
// worker pool that keeps a single Chat request from fanning out an
// unbounded number of concurrent provider calls.
package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/vigil-eol/advisor/cache"
	"github.com/vigil-eol/advisor/classifier"
	"github.com/vigil-eol/advisor/config"
	"github.com/vigil-eol/advisor/inventory"
	"github.com/vigil-eol/advisor/model"
	"github.com/vigil-eol/advisor/provider"
	"github.com/vigil-eol/advisor/router"
	"github.com/vigil-eol/advisor/telemetry"
)

// defaultInventoryWindowDays bounds how far back GatherInventory looks
// when a request doesn't say otherwise.
const defaultInventoryWindowDays = 30

// Confirm carries the C9 confirm handshake payload: whether the
// caller confirmed a destructive-sounding request, and the original
// message that triggered the gate (since "confirm: true" alone
// doesn't say what is being confirmed).
type Confirm struct {
	Confirmed       bool
	OriginalMessage string
}

// maxRequestTimeout bounds TimeoutSeconds the same way the HTTP
// timeout middleware bounds its X-Request-Timeout header, so a caller
// can't use either path to hold a worker-pool slot indefinitely.
const maxRequestTimeout = 5 * time.Minute

// Request is one Chat invocation.
type Request struct {
	Message         string
	SessionID       string
	RequestID       string
	InventoryWindow int // days; 0 uses defaultInventoryWindowDays
	TimeoutSeconds  int // 0 leaves ctx's existing deadline untouched
	Confirm         *Confirm
}

// Outcome is what Run produces: either a report, a refusal, or a
// request for confirmation — at most one of these is meaningful at a
// time, which is why Report is nil on the other two paths.
type Outcome struct {
	NeedsConfirmation bool
	Refused           bool
	Intent            classifier.QueryIntent
	Task              classifier.TaskType
	Report            *model.AggregateReport
}

// Orchestrator wires the classifier, inventory collector, router,
// provider registry, cache, and telemetry recorder into the single
// Run entry point the HTTP and CLI surfaces both call.
type Orchestrator struct {
	cfg       *config.Config
	registry  *provider.Registry
	cacheEng  *cache.Engine
	router    *router.Router
	inventory *inventory.Collector // nil disables inventory-backed tasks
	telemetry *telemetry.Recorder
	pool      *workerPool
}

// New constructs an Orchestrator. inventory may be nil when no
// telemetry backend is configured — inventory-dependent tasks then
// degrade to whatever ExtractAsset can pull from the message text.
func New(cfg *config.Config, registry *provider.Registry, cacheEng *cache.Engine, rt *router.Router, inv *inventory.Collector, rec *telemetry.Recorder) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		registry:  registry,
		cacheEng:  cacheEng,
		router:    rt,
		inventory: inv,
		telemetry: rec,
		pool:      newWorkerPool(cfg.WorkerPoolSize),
	}
}

// Registry exposes the provider registry for health-check endpoints.
func (o *Orchestrator) Registry() *provider.Registry { return o.registry }

// Cache exposes the cache engine for purge endpoints.
func (o *Orchestrator) Cache() *cache.Engine { return o.cacheEng }

// InventoryCollector exposes the inventory collector for CLI commands
// that dump raw inventory without running a provider cascade. Returns
// nil when no telemetry backend is configured.
func (o *Orchestrator) InventoryCollector() *inventory.Collector { return o.inventory }

// Run executes the full state machine for one Chat message and
// returns the categorized report, or an Outcome signaling that the
// confirm handshake must run first.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.TimeoutSeconds > 0 {
		timeout := time.Duration(req.TimeoutSeconds) * time.Second
		if timeout > maxRequestTimeout {
			timeout = maxRequestTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = newID()
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = newID()
	}

	message := req.Message
	if req.Confirm != nil {
		message = req.Confirm.OriginalMessage
	}

	if LooksDestructive(message) {
		if req.Confirm == nil {
			return &Outcome{NeedsConfirmation: true}, nil
		}
		if !req.Confirm.Confirmed {
			o.emit(telemetry.Event{Kind: telemetry.EventCancelled, SessionID: sessionID, RequestID: requestID, Component: "orchestrator"})
			return &Outcome{Refused: true}, nil
		}
	}

	intent, task := classifier.Classify(message)
	o.emit(telemetry.Event{
		Kind: telemetry.EventClassified, SessionID: sessionID, RequestID: requestID,
		Component: "classifier", Extra: map[string]any{"intent": string(intent), "task": string(task)},
	})

	report := model.NewAggregateReport(sessionID)
	window := req.InventoryWindow
	if window <= 0 {
		window = defaultInventoryWindowDays
	}

	assets, _ := o.gatherAssets(ctx, intent, task, message, window, sessionID, requestID)
	if len(assets) == 0 {
		return &Outcome{Intent: intent, Task: task, Report: report}, nil
	}

	if task == classifier.TaskInventoryOnly {
		for _, a := range assets {
			report.Add(model.ReportEntry{Asset: a, Category: model.CategoryUnknown})
		}
		o.emit(telemetry.Event{Kind: telemetry.EventReportRendered, SessionID: sessionID, RequestID: requestID, Component: "orchestrator"})
		return &Outcome{Intent: intent, Task: task, Report: report}, nil
	}

	o.dispatch(ctx, task, assets, report, sessionID, requestID)

	o.emit(telemetry.Event{Kind: telemetry.EventReportRendered, SessionID: sessionID, RequestID: requestID, Component: "orchestrator"})
	return &Outcome{Intent: intent, Task: task, Report: report}, nil
}

// gatherAssets implements GatherInventory + ExtractAssets: for
// inventory-driven tasks it queries the InventoryCollector, for
// direct/internet EOL tasks it extracts a single asset from the
// message text.
func (o *Orchestrator) gatherAssets(ctx context.Context, intent classifier.QueryIntent, task classifier.TaskType, message string, window int, sessionID, requestID string) ([]model.Asset, error) {
	switch task {
	case classifier.TaskInventoryOnly, classifier.TaskMixedInventoryEOL, classifier.TaskUpdatePlanning:
		if o.inventory == nil {
			// No telemetry backend configured. Fall back to extracting
			// from the message rather than failing the whole request.
			if a, ok := ExtractAsset(message); ok {
				return []model.Asset{a}, nil
			}
			return nil, nil
		}
		o.emit(telemetry.Event{Kind: telemetry.EventInventoryStarted, SessionID: sessionID, RequestID: requestID, Component: "inventory"})
		assets, err := o.collectInventoryAssets(ctx, intent, window)
		o.emit(telemetry.Event{Kind: telemetry.EventInventoryDone, SessionID: sessionID, RequestID: requestID, Component: "inventory", Extra: map[string]any{"count": len(assets)}})
		if len(assets) == 0 {
			if a, ok := ExtractAsset(message); ok {
				return []model.Asset{a}, nil
			}
		}
		return assets, err
	default:
		if a, ok := ExtractAsset(message); ok {
			return []model.Asset{a}, nil
		}
		return nil, nil
	}
}

func (o *Orchestrator) collectInventoryAssets(ctx context.Context, intent classifier.QueryIntent, window int) ([]model.Asset, error) {
	var assets []model.Asset
	var firstErr error

	collectOS := func() {
		a, err := o.inventory.CollectOS(ctx, window)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		assets = append(assets, a...)
	}
	collectSoftware := func() {
		a, err := o.inventory.CollectSoftware(ctx, window)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		assets = append(assets, a...)
	}

	switch intent {
	case classifier.IntentOSInventory, classifier.IntentOSEOLGrounded:
		collectOS()
	case classifier.IntentSoftwareInventory, classifier.IntentSoftwareEOLGrounded:
		collectSoftware()
	default:
		collectOS()
		collectSoftware()
	}
	return assets, firstErr
}

// dispatch runs ExecutePlan for every asset under the bounded worker
// pool, writing results into report as each job finishes. Context
// cancellation is checked both at pool admission and inside each
// plan's provider loop, so a cancelled request drains within the
// per-provider HTTP client's own cancellation latency rather than
// waiting for the whole fan-out to finish.
func (o *Orchestrator) dispatch(ctx context.Context, task classifier.TaskType, assets []model.Asset, report *model.AggregateReport, sessionID, requestID string) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, asset := range assets {
		asset := asset
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := o.pool.acquire(ctx); err != nil {
				mu.Lock()
				report.Add(model.ReportEntry{
					Asset:    asset,
					Category: model.CategoryFailed,
					Attempts: []model.Attempt{{ErrorKind: model.ErrCancelled}},
				})
				mu.Unlock()
				return
			}
			defer o.pool.release()

			entry := o.executePlan(ctx, task, asset, sessionID, requestID)

			mu.Lock()
			report.Add(entry)
			mu.Unlock()
		}()
	}
	wg.Wait()
}

// executePlan runs one asset's Plan cascade to completion (stop rule
// satisfied, providers exhausted, or context cancelled) and returns
// the ReportEntry for it.
func (o *Orchestrator) executePlan(ctx context.Context, task classifier.TaskType, asset model.Asset, sessionID, requestID string) model.ReportEntry {
	plan := o.router.Build(task, asset)
	fp := asset.Fingerprint()

	var best *model.LookupResult
	var attempts []model.Attempt
	agreeing := 0

	for _, ref := range plan.Providers {
		if ctx.Err() != nil {
			break
		}

		p, ok := o.registry.Get(ref.ID)
		if !ok {
			continue
		}

		key := cache.Key(ref.ID, fp)
		timeout := o.cfg.ProviderTimeout(ref.ID)
		pctx, cancel := context.WithTimeout(ctx, timeout)

		start := time.Now()
		var attemptsMade int
		o.emit(telemetry.Event{Kind: telemetry.EventLookupStarted, SessionID: sessionID, RequestID: requestID, Component: "provider:" + ref.ID, AssetName: asset.Name, Provider: ref.ID})

		res, cached, err := o.cacheEng.Get(pctx, key, func(c context.Context) (*model.LookupResult, error) {
			r, n, e := provider.RetryLookup(c, func(cc context.Context) (*model.LookupResult, error) {
				return p.Lookup(cc, fp)
			})
			attemptsMade = n
			return r, e
		})
		cancel()
		duration := time.Since(start)

		if cached {
			o.emit(telemetry.Event{Kind: telemetry.EventCacheHit, SessionID: sessionID, RequestID: requestID, Component: "cache", AssetName: asset.Name, Provider: ref.ID})
		} else {
			o.emit(telemetry.Event{Kind: telemetry.EventCacheMiss, SessionID: sessionID, RequestID: requestID, Component: "cache", AssetName: asset.Name, Provider: ref.ID})
		}
		if attemptsMade > 1 {
			o.emit(telemetry.Event{Kind: telemetry.EventProviderRetry, SessionID: sessionID, RequestID: requestID, Component: "provider:" + ref.ID, AssetName: asset.Name, Provider: ref.ID, Attempt: attemptsMade})
		}

		var errKind model.ErrorKind
		if err != nil {
			if pe, ok := err.(*model.ProviderError); ok {
				errKind = pe.Kind
			}
			o.emit(telemetry.Event{Kind: telemetry.EventLookupFailed, SessionID: sessionID, RequestID: requestID, Component: "provider:" + ref.ID, AssetName: asset.Name, Provider: ref.ID, ErrorKind: errKind, DurationMs: duration.Milliseconds()})
		} else if res != nil {
			o.emit(telemetry.Event{Kind: telemetry.EventLookupSucceeded, SessionID: sessionID, RequestID: requestID, Component: "provider:" + ref.ID, AssetName: asset.Name, Provider: ref.ID, Status: res.Status, Risk: res.Risk, DurationMs: duration.Milliseconds()})
		}

		attempts = append(attempts, model.Attempt{ProviderID: ref.ID, Result: res, ErrorKind: errKind, Retries: attemptsMade})

		if err == nil && res != nil && res.Success {
			if best == nil || res.Confidence > best.Confidence {
				best = res
			}
			agreeing = 0
			for _, a := range attempts {
				if a.Result != nil && a.Result.Success && a.Result.Status == best.Status {
					agreeing++
				}
			}
			if plan.StopRule.Satisfied(best, agreeing) {
				break
			}
		}
	}

	o.emit(telemetry.Event{Kind: telemetry.EventPlanCompleted, SessionID: sessionID, RequestID: requestID, Component: "orchestrator", AssetName: asset.Name})

	return model.ReportEntry{
		Asset:    asset,
		Result:   best,
		Category: model.CategorizeResult(best),
		Attempts: attempts,
	}
}

func (o *Orchestrator) emit(e telemetry.Event) {
	if o.telemetry != nil {
		o.telemetry.Emit(e)
	}
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
