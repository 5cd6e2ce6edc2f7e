package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/service"
)

type InviteHandler struct {
	svc *service.InviteService
}

func NewInviteHandler(svc *service.InviteService) *InviteHandler {
	return &InviteHandler{svc: svc}
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	invites, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email         string `json:"email"`
		Description   string `json:"description"`
		MaxUses       int    `json:"maxUses"`
		ExpiresInDays int    `json:"expiresInDays"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	inv, err := h.svc.Create(r.Context(), claims.UserID, req.Email, req.Description, req.MaxUses, req.ExpiresInDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InviteHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	id := chi.URLParam(r, "inviteId")
	if err := h.svc.Deactivate(r.Context(), claims.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deactivated": id})
}
