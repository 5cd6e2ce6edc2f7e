package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/models"
	"github.com/formflowhq/formflow/internal/service"
	"github.com/formflowhq/formflow/internal/webhook"
)

type FormHandler struct {
	svc        *service.FormService
	analytics  *service.AnalyticsService
	dispatcher *webhook.Dispatcher
}

func NewFormHandler(svc *service.FormService, analytics *service.AnalyticsService, dispatcher *webhook.Dispatcher) *FormHandler {
	return &FormHandler{svc: svc, analytics: analytics, dispatcher: dispatcher}
}

type formResponse struct {
	*models.Form
	Fields []models.FormField `json:"fields"`
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())

	var folderID *string
	rootOnly := r.URL.Query().Get("root") == "true"
	if id := r.URL.Query().Get("folderId"); id != "" {
		folderID = &id
	}

	forms, err := h.svc.List(r.Context(), claims.UserID, folderID, rootOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.FormInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	form, fields, err := h.svc.Create(r.Context(), claims.UserID, input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.dispatcher.DispatchFormEventAsync(form.ID, webhook.ActionCreate)
	writeJSON(w, http.StatusCreated, formResponse{Form: form, Fields: fields})
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	form, fields, err := h.svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{Form: form, Fields: fields})
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.FormInput
	if err := readJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	form, fields, err := h.svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "formId"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.dispatcher.DispatchFormEventAsync(form.ID, webhook.ActionUpdate)
	writeJSON(w, http.StatusOK, formResponse{Form: form, Fields: fields})
}

func (h *FormHandler) SetPublished(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsPublished bool `json:"isPublished"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	form, err := h.svc.SetPublished(r.Context(), claims.UserID, chi.URLParam(r, "formId"), req.IsPublished)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.dispatcher.DispatchFormEventAsync(form.ID, webhook.ActionUpdate)
	writeJSON(w, http.StatusOK, form)
}

func (h *FormHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderID *string `json:"folderId"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	if err := h.svc.Move(r.Context(), claims.UserID, chi.URLParam(r, "formId"), req.FolderID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": true})
}

func (h *FormHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	form, fields, err := h.svc.Duplicate(r.Context(), claims.UserID, chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.dispatcher.DispatchFormEventAsync(form.ID, webhook.ActionCreate)
	writeJSON(w, http.StatusCreated, formResponse{Form: form, Fields: fields})
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	id := chi.URLParam(r, "formId")
	if err := h.svc.Delete(r.Context(), claims.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *FormHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	stats, err := h.analytics.ForForm(r.Context(), claims.UserID, chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
