package handler

import (
	"net/http"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/service"
)

type DashboardHandler struct {
	formSvc   *service.FormService
	subSvc    *service.SubmissionService
	folderSvc *service.FolderService
}

func NewDashboardHandler(formSvc *service.FormService, subSvc *service.SubmissionService, folderSvc *service.FolderService) *DashboardHandler {
	return &DashboardHandler{formSvc: formSvc, subSvc: subSvc, folderSvc: folderSvc}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())

	forms, err := h.formSvc.List(r.Context(), claims.UserID, nil, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	folders, err := h.folderSvc.List(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	totalSubs := 0
	published := 0
	formStats := make([]map[string]any, 0, len(forms))
	for _, f := range forms {
		count, err := h.subSvc.CountByForm(r.Context(), f.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		totalSubs += count
		if f.IsPublished {
			published++
		}
		formStats = append(formStats, map[string]any{
			"id":              f.ID,
			"title":           f.Title,
			"slug":            f.Slug,
			"isPublished":     f.IsPublished,
			"folderId":        f.FolderID,
			"submissionCount": count,
			"createdAt":       f.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"formCount":       len(forms),
		"publishedCount":  published,
		"submissionCount": totalSubs,
		"folderCount":     len(folders),
		"forms":           formStats,
	})
}
