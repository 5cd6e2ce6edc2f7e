package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/handler"
	mw "github.com/formflowhq/formflow/internal/middleware"
)

func New(
	jwtSecret string,
	authH *handler.AuthHandler,
	formH *handler.FormHandler,
	subH *handler.SubmissionHandler,
	folderH *handler.FolderHandler,
	inviteH *handler.InviteHandler,
	integrationH *handler.IntegrationHandler,
	dashH *handler.DashboardHandler,
	publicH *handler.PublicHandler,
	sessionH *handler.SessionHandler,
	webhookH *handler.WebhookHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	// Respondent-facing routes, no auth
	r.Route("/form/{slug}", func(r chi.Router) {
		r.Get("/", publicH.GetForm)
		r.Post("/submissions", publicH.Submit)

		r.Post("/session", sessionH.Create)
		r.Route("/session/{sessionId}", func(r chi.Router) {
			r.Get("/", sessionH.Get)
			r.Post("/start", sessionH.Start)
			r.Post("/next", sessionH.Next)
			r.Post("/previous", sessionH.Previous)
			r.Post("/reset", sessionH.Reset)
		})
	})

	// Synchronous webhook triggers
	r.Post("/webhooks/form-event", webhookH.FormEvent)
	r.Post("/webhooks/submission-event", webhookH.SubmissionEvent)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			// Auth
			r.Get("/auth/me", authH.Me)

			// Dashboard
			r.Get("/dashboard", dashH.Dashboard)

			// Forms
			r.Get("/forms", formH.List)
			r.Post("/forms", formH.Create)
			r.Get("/forms/{formId}", formH.Get)
			r.Put("/forms/{formId}", formH.Update)
			r.Delete("/forms/{formId}", formH.Delete)
			r.Patch("/forms/{formId}/publish", formH.SetPublished)
			r.Patch("/forms/{formId}/move", formH.Move)
			r.Post("/forms/{formId}/duplicate", formH.Duplicate)
			r.Get("/forms/{formId}/analytics", formH.Analytics)

			// Spreadsheet integration
			r.Post("/forms/{formId}/integration", integrationH.Create)
			r.Post("/forms/{formId}/integration/recreate", integrationH.Recreate)
			r.Delete("/forms/{formId}/integration", integrationH.Disconnect)

			// Submissions
			r.Get("/forms/{formId}/submissions", subH.List)
			r.Get("/forms/{formId}/submissions/search", subH.Search)
			r.Get("/forms/{formId}/submissions/export", subH.ExportCSV)
			r.Get("/forms/{formId}/submissions/{submissionId}", subH.Get)
			r.Delete("/forms/{formId}/submissions/{submissionId}", subH.Delete)

			// Folders
			r.Get("/folders", folderH.List)
			r.Post("/folders", folderH.Create)
			r.Put("/folders/{folderId}", folderH.Rename)
			r.Delete("/folders/{folderId}", folderH.Delete)

			// Invitations
			r.Get("/invitations", inviteH.List)
			r.Post("/invitations", inviteH.Create)
			r.Delete("/invitations/{inviteId}", inviteH.Deactivate)
		})
	})

	return r
}
