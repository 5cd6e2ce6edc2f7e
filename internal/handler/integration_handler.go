package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/service"
)

type IntegrationHandler struct {
	svc *service.IntegrationService
}

func NewIntegrationHandler(svc *service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{svc: svc}
}

func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	settings, err := h.svc.CreateSpreadsheet(r.Context(), claims.UserID, chi.URLParam(r, "formId"))
	if err != nil {
		if errors.Is(err, service.ErrNoIntegrationEndpoint) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *IntegrationHandler) Recreate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	settings, err := h.svc.Recreate(r.Context(), claims.UserID, chi.URLParam(r, "formId"))
	if err != nil {
		if errors.Is(err, service.ErrNoIntegrationEndpoint) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *IntegrationHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if err := h.svc.Disconnect(r.Context(), claims.UserID, chi.URLParam(r, "formId")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disconnected": true})
}
