package httpapi

import (
	"net/http"

	"github.com/vigil-eol/advisor/orchestrator"
)

// HealthHandler serves GET /v1/health: the most recent HealthPoller
// snapshot for every registered provider.
type HealthHandler struct {
	orch *orchestrator.Orchestrator
}

func NewHealthHandler(orch *orchestrator.Orchestrator) *HealthHandler {
	return &HealthHandler{orch: orch}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": h.orch.Registry().Snapshot(),
	})
}
