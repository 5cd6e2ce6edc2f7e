package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/formflowhq/formflow/internal/flow"
	"github.com/formflowhq/formflow/internal/models"
	"github.com/formflowhq/formflow/internal/service"
	"github.com/formflowhq/formflow/internal/webhook"
)

// SessionHandler drives the step-by-step public form wizard. Each session
// walks one respondent through the questions server-side; the client only
// ever posts the current answer and renders the returned snapshot.
type SessionHandler struct {
	forms      *service.FormService
	subs       *service.SubmissionService
	sessions   *flow.SessionStore
	dispatcher *webhook.Dispatcher
}

func NewSessionHandler(forms *service.FormService, subs *service.SubmissionService, sessions *flow.SessionStore, dispatcher *webhook.Dispatcher) *SessionHandler {
	return &SessionHandler{forms: forms, subs: subs, sessions: sessions, dispatcher: dispatcher}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, fields, err := h.forms.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	session := flow.NewSession(uuid.NewString(), form, fields)
	h.sessions.Put(session)
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := session.Start()
	h.writeSnapshot(w, snap, err)
}

func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Value any    `json:"value"`
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value := flow.ValueFrom(req.Value)
	if f := currentField(session); f != nil && f.Type == models.FieldTel && !value.IsMulti() {
		value = flow.ValueFrom(flow.FormatPhone(value.Text))
	}

	userAgent := r.UserAgent()
	submit := func(ctx context.Context, form *models.Form, fields []models.FormField, answers map[string]flow.Value) (string, error) {
		sub, err := h.subs.Submit(ctx, form, fields, answers, req.Email, userAgent)
		if err != nil {
			return "", err
		}
		h.dispatcher.DispatchSubmissionEventAsync(sub.ID)
		return sub.ID, nil
	}

	snap, err := session.Next(r.Context(), value, submit)
	h.writeSnapshot(w, snap, err)
}

func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := session.Previous()
	h.writeSnapshot(w, snap, err)
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := session.Reset()
	h.writeSnapshot(w, snap, err)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*flow.Session, bool) {
	session := h.sessions.Get(chi.URLParam(r, "sessionId"))
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	if session.Form.Slug != chi.URLParam(r, "slug") {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) writeSnapshot(w http.ResponseWriter, snap flow.Snapshot, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, flow.ErrNotAtWelcome),
		errors.Is(err, flow.ErrNotStepping),
		errors.Is(err, flow.ErrAlreadyDone),
		errors.Is(err, flow.ErrNotSubmitted),
		errors.Is(err, flow.ErrNoReset),
		errors.Is(err, flow.ErrNoFields):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeServiceError(w, err)
	}
}

func currentField(session *flow.Session) *models.FormField {
	snap := session.Snapshot()
	return snap.Field
}
