// Package cache provides the TTL-and-single-flight layer every
// Provider lookup passes through: identical concurrent requests for
// the same fingerprint collapse into one underlying call, failed
// lookups are cached briefly to avoid hammering a dead upstream, and
// an optional Backend persists entries across process restarts.
//
// The single-flight primitive (keyedMutex) serializes EOL lookups per
// cache key, admitting one caller to run the lookup while every other
// caller for the same key waits on its result.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// Entry is the envelope a Backend stores and the Engine keeps in
// memory: a result (nil on a cached miss) plus its expiry.
type Entry struct {
	Result    *model.LookupResult `json:"result"`
	Negative  bool                `json:"negative"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func (e Entry) expired(now time.Time) bool { return now.After(e.ExpiresAt) }

// Backend is a pluggable persistence layer behind the in-memory
// Engine. redisclient.Client is the only production implementation;
// tests use an in-memory stub.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// PrefixDeleter is implemented by Backends that can purge every key
// sharing a prefix in one call, used by PurgeByAgent's
// PurgeCache(agent_id)/DeletePrefix(agent) contract.
type PrefixDeleter interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// keyedMutex serializes concurrent access per key so that N callers
// racing on the same fingerprint result in exactly one upstream call.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyWaiter
}

type keyWaiter struct {
	mu      sync.Mutex
	waiters int32
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyWaiter)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	w, ok := k.locks[key]
	if !ok {
		w = &keyWaiter{}
		k.locks[key] = w
	}
	atomic.AddInt32(&w.waiters, 1)
	k.mu.Unlock()

	w.mu.Lock()

	return func() {
		w.mu.Unlock()
		k.mu.Lock()
		if atomic.AddInt32(&w.waiters, -1) == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Stats reports cumulative counters for observability and tests.
type Stats struct {
	Hits       int64
	Misses     int64
	NegHits    int64
	Coalesced  int64
}

// Engine is the cache + single-flight coordinator placed in front of
// the provider Registry. TTL applies to successful results;
// NegativeTTL applies to ones the Engine is told to cache as misses,
// so a not_found result doesn't retrigger the full cascade on every
// repeat question.
type Engine struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	inflight    *keyedMutex
	backend     Backend
	ttl         time.Duration
	negativeTTL time.Duration

	stats Stats
}

// Option configures an Engine at construction.
type Option func(*Engine)

func WithBackend(b Backend) Option { return func(e *Engine) { e.backend = b } }

func WithTTL(ttl time.Duration) Option { return func(e *Engine) { e.ttl = ttl } }

func WithNegativeTTL(ttl time.Duration) Option { return func(e *Engine) { e.negativeTTL = ttl } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		entries:     make(map[string]Entry),
		inflight:    newKeyedMutex(),
		ttl:         24 * time.Hour,
		negativeTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key builds the cache key for a (provider, fingerprint) pair:
// eol/{agent_id}/{fingerprint.Hex16()}.
func Key(providerID string, fp fingerprint.Fingerprint) string {
	return "eol/" + providerID + "/" + fp.Hex16()
}

// LookupFunc performs the uncached call. It is invoked at most once
// per key across any number of concurrent Get callers.
type LookupFunc func(ctx context.Context) (*model.LookupResult, error)

// Get returns a cached entry if present and unexpired, otherwise runs
// fn under the key's single-flight lock, caches the outcome (positive
// or negative), and returns it. The cached bool return distinguishes
// a cache hit from a freshly computed result, for telemetry.
func (e *Engine) Get(ctx context.Context, key string, fn LookupFunc) (*model.LookupResult, bool, error) {
	if res, ok := e.lookupFresh(ctx, key); ok {
		atomic.AddInt64(&e.stats.Hits, 1)
		if res == nil {
			atomic.AddInt64(&e.stats.NegHits, 1)
			return nil, true, &model.ProviderError{Kind: model.ErrNotFound, Message: "cached negative result"}
		}
		return res, true, nil
	}

	unlock := e.inflight.Lock(key)
	defer unlock()

	// Another goroutine may have populated the entry while we waited
	// for the lock; re-check before calling fn.
	if res, ok := e.lookupFresh(ctx, key); ok {
		atomic.AddInt64(&e.stats.Coalesced, 1)
		if res == nil {
			return nil, true, &model.ProviderError{Kind: model.ErrNotFound, Message: "cached negative result"}
		}
		return res, true, nil
	}

	atomic.AddInt64(&e.stats.Misses, 1)
	result, err := fn(ctx)
	e.store(ctx, key, result, err)
	return result, false, err
}

func (e *Engine) lookupFresh(ctx context.Context, key string) (*model.LookupResult, bool) {
	now := time.Now()

	e.mu.RLock()
	entry, ok := e.entries[key]
	e.mu.RUnlock()
	if ok && !entry.expired(now) {
		return entry.Result, true
	}

	if e.backend != nil {
		if entry, ok, err := e.backend.Get(ctx, key); err == nil && ok && !entry.expired(now) {
			e.mu.Lock()
			e.entries[key] = entry
			e.mu.Unlock()
			return entry.Result, true
		}
	}
	return nil, false
}

func (e *Engine) store(ctx context.Context, key string, result *model.LookupResult, err error) {
	now := time.Now()
	entry := Entry{Result: result}
	if err != nil {
		entry.Negative = true
		entry.ExpiresAt = now.Add(e.negativeTTL)
	} else {
		entry.ExpiresAt = now.Add(e.ttl)
	}

	e.mu.Lock()
	e.entries[key] = entry
	e.mu.Unlock()

	if e.backend != nil {
		_ = e.backend.Set(ctx, key, entry)
	}
}

// Purge removes a single key from both the in-memory map and the
// backend, used by the httpapi cache-purge endpoint.
func (e *Engine) Purge(ctx context.Context, key string) error {
	e.mu.Lock()
	delete(e.entries, key)
	e.mu.Unlock()
	if e.backend != nil {
		return e.backend.Delete(ctx, key)
	}
	return nil
}

// PurgeAll clears every in-memory entry and reports how many were
// removed. The backend, if any, is left untouched — callers that need
// a full backend wipe should manage that out of band (e.g. a Redis
// FLUSHDB run by an operator).
func (e *Engine) PurgeAll() int {
	e.mu.Lock()
	n := len(e.entries)
	e.entries = make(map[string]Entry)
	e.mu.Unlock()
	return n
}

// PurgeByAgent deletes every cached entry whose key belongs to the
// given provider/agent id, via the `eol/{agent_id}/{hex16}` key
// layout. Returns the number of entries removed.
func (e *Engine) PurgeByAgent(ctx context.Context, agentID string) (int, error) {
	prefix := "eol/" + agentID + "/"

	e.mu.Lock()
	removed := 0
	for k := range e.entries {
		if strings.HasPrefix(k, prefix) {
			delete(e.entries, k)
			removed++
		}
	}
	e.mu.Unlock()

	if pd, ok := e.backend.(PrefixDeleter); ok {
		n, err := pd.DeleteByPrefix(ctx, prefix)
		if err != nil {
			return removed, err
		}
		if n > removed {
			removed = n
		}
	}
	return removed, nil
}

// Stats returns a snapshot of cumulative counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&e.stats.Hits),
		Misses:    atomic.LoadInt64(&e.stats.Misses),
		NegHits:   atomic.LoadInt64(&e.stats.NegHits),
		Coalesced: atomic.LoadInt64(&e.stats.Coalesced),
	}
}

// MarshalEntry/UnmarshalEntry let a Backend round-trip an Entry through
// a byte-oriented store (Redis, disk) without each Backend reimplementing
// the JSON envelope.
func MarshalEntry(e Entry) ([]byte, error) { return json.Marshal(e) }

func UnmarshalEntry(b []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(b, &e)
	return e, err
}
