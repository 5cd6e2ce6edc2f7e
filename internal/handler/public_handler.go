package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/flow"
	"github.com/formflowhq/formflow/internal/models"
	"github.com/formflowhq/formflow/internal/service"
	"github.com/formflowhq/formflow/internal/webhook"
)

// PublicHandler serves the unauthenticated respondent-facing surface: form
// definitions by slug and direct submission.
type PublicHandler struct {
	forms      *service.FormService
	subs       *service.SubmissionService
	dispatcher *webhook.Dispatcher
}

func NewPublicHandler(forms *service.FormService, subs *service.SubmissionService, dispatcher *webhook.Dispatcher) *PublicHandler {
	return &PublicHandler{forms: forms, subs: subs, dispatcher: dispatcher}
}

func (h *PublicHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, fields, err := h.forms.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{Form: form, Fields: fields})
}

// Submit accepts a full answer map in one request, keyed by field ID. The
// step-by-step wizard lives on the session endpoints; this is the one-shot
// path for embedded and API clients.
func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, fields, err := h.forms.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req struct {
		Answers map[string]any `json:"answers"`
		Email   string         `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers := make(map[string]flow.Value, len(req.Answers))
	for fieldID, raw := range req.Answers {
		answers[fieldID] = flow.ValueFrom(raw)
	}
	maskPhones(fields, answers)

	sub, err := h.subs.Submit(r.Context(), form, fields, answers, req.Email, r.UserAgent())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.dispatcher.DispatchSubmissionEventAsync(sub.ID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"submissionId":   sub.ID,
		"successMessage": form.SuccessMessage,
	})
}

// maskPhones normalizes tel answers into the display format the dashboard
// and exports expect.
func maskPhones(fields []models.FormField, answers map[string]flow.Value) {
	for _, f := range fields {
		if f.Type != models.FieldTel {
			continue
		}
		if v, ok := answers[f.ID]; ok && !v.IsMulti() && !v.IsEmpty() {
			answers[f.ID] = flow.ValueFrom(flow.FormatPhone(v.Text))
		}
	}
}
