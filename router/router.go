// Package router builds the per-asset Plan the orchestrator executes:
// an ordered provider cascade plus a StopRule. The cascade order is a
// fixed priority evaluation with a fallback chain, not operator
// authored, so there is no CRUD surface for it.
package router

import (
	"github.com/vigil-eol/advisor/classifier"
	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
	"github.com/vigil-eol/advisor/provider"
)

// Router turns a classified task and an Asset into a Plan by
// consulting the provider Registry.
type Router struct {
	registry *provider.Registry
}

func NewRouter(registry *provider.Registry) *Router {
	return &Router{registry: registry}
}

// aggregatorFirstSuccess is the confidence threshold a vendor or
// aggregator result must clear for the cascade to stop without trying
// the remaining providers in the Plan.
const aggregatorFirstSuccess = 0.6

// Build returns the Plan for one Asset given the task the Classifier
// produced. INVENTORY_ONLY tasks never reach here — the orchestrator
// only calls Build for tasks needing a provider cascade.
func (r *Router) Build(task classifier.TaskType, asset model.Asset) model.Plan {
	fp := asset.Fingerprint()

	if task == classifier.TaskInternetEOL {
		return model.Plan{
			Asset:     asset,
			Providers: r.webSearchOnly(),
			StopRule:  model.StopRule{Kind: model.StopCollectBest},
		}
	}

	return model.Plan{
		Asset:     asset,
		Providers: r.cascade(fp),
		StopRule:  model.StopRule{Kind: model.StopFirstSuccess, ConfidenceThreshold: aggregatorFirstSuccess},
	}
}

// cascade picks the first vendor provider (by Priority) whose
// Supports matches the fingerprint, then appends the two aggregators
// and the web-search fallback in that fixed order.
func (r *Router) cascade(fp fingerprint.Fingerprint) []model.ProviderRef {
	var refs []model.ProviderRef
	seen := make(map[string]bool)

	for _, p := range r.registry.SupportingSorted(fp) {
		if isFallbackProvider(p.Id()) {
			continue
		}
		refs = append(refs, model.ProviderRef{ID: p.Id(), Priority: p.Priority()})
		seen[p.Id()] = true
		break
	}

	for _, id := range []string{"endoflife.date", "eolstatus.com", "web-search"} {
		if seen[id] {
			continue
		}
		if p, ok := r.registry.Get(id); ok {
			refs = append(refs, model.ProviderRef{ID: p.Id(), Priority: p.Priority()})
			seen[id] = true
		}
	}

	return refs
}

func (r *Router) webSearchOnly() []model.ProviderRef {
	if p, ok := r.registry.Get("web-search"); ok {
		return []model.ProviderRef{{ID: p.Id(), Priority: p.Priority()}}
	}
	return nil
}

func isFallbackProvider(id string) bool {
	return id == "endoflife.date" || id == "eolstatus.com" || id == "web-search"
}
