package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/service"
)

type FolderHandler struct {
	svc *service.FolderService
}

func NewFolderHandler(svc *service.FolderService) *FolderHandler {
	return &FolderHandler{svc: svc}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	folders, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	folder, err := h.svc.Create(r.Context(), claims.UserID, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := auth.GetUser(r.Context())
	if err := h.svc.Rename(r.Context(), claims.UserID, chi.URLParam(r, "folderId"), req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"renamed": true})
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	id := chi.URLParam(r, "folderId")
	if err := h.svc.Delete(r.Context(), claims.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
