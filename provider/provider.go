// Package provider defines the uniform EOL lookup contract implemented
// by every data source: static vendor knowledge tables, live vendor
// endpoints, aggregator search engines, and the web-search fallback.
package provider

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

// Provider is one data source capable of answering an EOL question for
// a normalized Fingerprint.
type Provider interface {
	// Id returns the provider identifier used as LookupResult.Source
	// and as the cache key's agent segment.
	Id() string

	// Priority orders providers when more than one Supports a given
	// fingerprint; lower is preferred.
	Priority() int

	// Supports is a cheap predicate the Router uses to decide whether
	// this provider belongs in a Plan for the given fingerprint.
	Supports(fp fingerprint.Fingerprint) bool

	// Lookup resolves the fingerprint, or returns a *model.ProviderError.
	Lookup(ctx context.Context, fp fingerprint.Fingerprint) (*model.LookupResult, error)
}

// HealthStatus represents a provider's health state.
type HealthStatus struct {
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency_ms"`
	LastCheck time.Time     `json:"last_check"`
	Error     string        `json:"error,omitempty"`
}

// HealthChecker is implemented by providers whose reachability the
// background HealthPoller can probe. A provider that does not
// implement it is reported healthy without a probe; none of the
// providers in this package implements it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// ProviderConfig holds configuration shared by HTTP-backed connectors.
type ProviderConfig struct {
	Name       string
	BaseURL    string
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries int
	Disabled   bool
	HTTPClient *http.Client
}

// Registry holds every registered provider and the Router consults it
// to build cascades.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	health    map[string]HealthStatus
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		health:    make(map[string]HealthStatus),
	}
}

// Register adds a provider, keyed by its Id().
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Id()] = p
}

// Get returns a provider by id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// List returns all registered provider ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportingSorted returns every registered provider whose Supports(fp)
// is true, ordered by Priority ascending, lower-priority-value first.
func (r *Registry) SupportingSorted(fp fingerprint.Fingerprint) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []Provider
	for _, p := range r.providers {
		if p.Supports(fp) {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Priority() != matches[j].Priority() {
			return matches[i].Priority() < matches[j].Priority()
		}
		return matches[i].Id() < matches[j].Id()
	})
	return matches
}

// HealthCheckAll runs HealthCheck on every provider that implements
// HealthChecker, concurrently, and returns the aggregate snapshot.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	r.mu.RLock()
	providers := make(map[string]Provider, len(r.providers))
	for k, v := range r.providers {
		providers[k] = v
	}
	r.mu.RUnlock()

	results := make(map[string]HealthStatus)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, p := range providers {
		hc, ok := p.(HealthChecker)
		if !ok {
			mu.Lock()
			results[name] = HealthStatus{Healthy: true, LastCheck: time.Now()}
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(n string, checker HealthChecker) {
			defer wg.Done()
			status := checker.HealthCheck(ctx)
			mu.Lock()
			results[n] = status
			mu.Unlock()
		}(name, hc)
	}
	wg.Wait()

	r.mu.Lock()
	r.health = results
	r.mu.Unlock()

	return results
}

// Snapshot returns the health map captured by the most recent
// HealthCheckAll or HealthPoller cycle.
func (r *Registry) Snapshot() map[string]HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]HealthStatus, len(r.health))
	for k, v := range r.health {
		out[k] = v
	}
	return out
}
