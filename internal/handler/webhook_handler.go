package handler

import (
	"net/http"

	"github.com/formflowhq/formflow/internal/webhook"
)

// WebhookHandler exposes the dispatcher synchronously so callers that need
// the delivery outcome can trigger one and read the result.
type WebhookHandler struct {
	dispatcher *webhook.Dispatcher
}

func NewWebhookHandler(dispatcher *webhook.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

func (h *WebhookHandler) FormEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FormID string `json:"formId"`
		Action string `json:"action"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FormID == "" {
		writeError(w, http.StatusBadRequest, "formId is required")
		return
	}
	res := h.dispatcher.DispatchFormEvent(r.Context(), req.FormID, req.Action)
	writeJSON(w, resultStatus(res), res)
}

func (h *WebhookHandler) SubmissionEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubmissionID string `json:"submissionId"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubmissionID == "" {
		writeError(w, http.StatusBadRequest, "submissionId is required")
		return
	}
	res := h.dispatcher.DispatchSubmissionEvent(r.Context(), req.SubmissionID)
	writeJSON(w, resultStatus(res), res)
}

func resultStatus(res webhook.Result) int {
	if res.Success {
		return http.StatusOK
	}
	if res.Status != 0 {
		return res.Status
	}
	return http.StatusBadGateway
}
