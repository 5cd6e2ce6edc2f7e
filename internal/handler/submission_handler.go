package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/service"
)

type SubmissionHandler struct {
	svc    *service.SubmissionService
	forms  *service.FormService
	export *service.ExportService
}

func NewSubmissionHandler(svc *service.SubmissionService, forms *service.FormService, export *service.ExportService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, forms: forms, export: export}
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.ownedFormID(w, r)
	if !ok {
		return
	}
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	subs, total, err := h.svc.List(r.Context(), formID, skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       total,
	})
}

func (h *SubmissionHandler) Search(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.ownedFormID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	subs, err := h.svc.Search(r.Context(), formID, query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.ownedFormID(w, r)
	if !ok {
		return
	}
	sub, responses, err := h.svc.Get(r.Context(), chi.URLParam(r, "submissionId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sub.FormID != formID {
		writeError(w, http.StatusNotFound, service.ErrSubmissionNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submission": sub,
		"responses":  responses,
	})
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formID, ok := h.ownedFormID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "submissionId")
	sub, _, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sub.FormID != formID {
		writeError(w, http.StatusNotFound, service.ErrSubmissionNotFound.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *SubmissionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	data, name, err := h.export.CSV(r.Context(), claims.UserID, chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ownedFormID resolves the formId route param and rejects forms the caller
// does not own.
func (h *SubmissionHandler) ownedFormID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := auth.GetUser(r.Context())
	formID := chi.URLParam(r, "formId")
	if _, _, err := h.forms.Get(r.Context(), claims.UserID, formID); err != nil {
		writeServiceError(w, err)
		return "", false
	}
	return formID, true
}
