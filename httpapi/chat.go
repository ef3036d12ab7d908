package httpapi

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/orchestrator"
	"github.com/vigil-eol/advisor/reporter"
)

// ChatHandler serves POST /v1/chat, the advisor's one business
// endpoint: classify the message, run whatever inventory/provider
// work it implies, and return both the structured report and its
// rendered markdown.
type ChatHandler struct {
	logger zerolog.Logger
	orch   *orchestrator.Orchestrator
}

func NewChatHandler(logger zerolog.Logger, orch *orchestrator.Orchestrator) *ChatHandler {
	return &ChatHandler{logger: logger.With().Str("handler", "chat").Logger(), orch: orch}
}

type confirmPayload struct {
	Confirmed       bool   `json:"confirmed"`
	OriginalMessage string `json:"original_message"`
}

type chatRequest struct {
	Message         string          `json:"message"`
	SessionID       string          `json:"session_id,omitempty"`
	InventoryWindow int             `json:"inventory_window_days,omitempty"`
	TimeoutSeconds  int             `json:"timeout_seconds,omitempty"`
	Confirm         *confirmPayload `json:"confirm,omitempty"`
}

type chatResponse struct {
	SessionID         string `json:"session_id"`
	Intent            string `json:"intent,omitempty"`
	Task              string `json:"task,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation,omitempty"`
	Refused           bool   `json:"refused,omitempty"`
	Report            any    `json:"report,omitempty"`
	Markdown          string `json:"markdown,omitempty"`
}

// Chat handles POST /v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "message": err.Error()})
		return
	}
	if req.Message == "" && req.Confirm == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "message": "message is required"})
		return
	}

	orchReq := orchestrator.Request{
		Message:         req.Message,
		SessionID:       req.SessionID,
		RequestID:       chimw.GetReqID(r.Context()),
		InventoryWindow: req.InventoryWindow,
		TimeoutSeconds:  req.TimeoutSeconds,
	}
	if req.Confirm != nil {
		orchReq.Confirm = &orchestrator.Confirm{
			Confirmed:       req.Confirm.Confirmed,
			OriginalMessage: req.Confirm.OriginalMessage,
		}
	}

	outcome, err := h.orch.Run(r.Context(), orchReq)
	if err != nil {
		h.logger.Error().Err(err).Msg("orchestrator run failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}

	resp := chatResponse{SessionID: req.SessionID}
	if outcome.NeedsConfirmation {
		resp.NeedsConfirmation = true
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if outcome.Refused {
		resp.Refused = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Intent = string(outcome.Intent)
	resp.Task = string(outcome.Task)
	resp.Report = outcome.Report
	resp.SessionID = outcome.Report.SessionID
	resp.Markdown = reporter.Render(outcome.Report)
	writeJSON(w, http.StatusOK, resp)
}
