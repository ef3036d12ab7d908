package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/orchestrator"
)

// CacheHandler serves the DELETE /v1/cache* family:
// PurgeCache(agent_id?, fingerprint?) -> {deleted}.
type CacheHandler struct {
	logger zerolog.Logger
	orch   *orchestrator.Orchestrator
}

func NewCacheHandler(logger zerolog.Logger, orch *orchestrator.Orchestrator) *CacheHandler {
	return &CacheHandler{logger: logger.With().Str("handler", "cache").Logger(), orch: orch}
}

// PurgeAll handles DELETE /v1/cache.
func (h *CacheHandler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	n := h.orch.Cache().PurgeAll()
	h.logger.Info().Int("deleted", n).Msg("full cache purge")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

// PurgeAgent handles DELETE /v1/cache/{agent}.
func (h *CacheHandler) PurgeAgent(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agent")
	n, err := h.orch.Cache().PurgeByAgent(r.Context(), agent)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "purge_failed", "message": err.Error()})
		return
	}
	h.logger.Info().Str("agent", agent).Int("deleted", n).Msg("agent cache purge")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n, "agent": agent})
}

// PurgeEntry handles DELETE /v1/cache/{agent}/{fingerprint}, where
// fingerprint is the Hex16() digest used in the eol/{agent}/{hex16}
// key layout (cache.Key), not a raw product name.
func (h *CacheHandler) PurgeEntry(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agent")
	fp := chi.URLParam(r, "fingerprint")
	key := "eol/" + agent + "/" + fp
	if err := h.orch.Cache().Purge(r.Context(), key); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "purge_failed", "message": err.Error()})
		return
	}
	h.logger.Info().Str("agent", agent).Str("fingerprint", fp).Msg("entry cache purge")
	writeJSON(w, http.StatusOK, map[string]any{"deleted": 1, "agent": agent, "fingerprint": fp})
}
