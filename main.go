package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/formflowhq/formflow/internal/config"
	"github.com/formflowhq/formflow/internal/db"
	"github.com/formflowhq/formflow/internal/flow"
	"github.com/formflowhq/formflow/internal/gelf"
	"github.com/formflowhq/formflow/internal/handler"
	"github.com/formflowhq/formflow/internal/repository"
	"github.com/formflowhq/formflow/internal/router"
	"github.com/formflowhq/formflow/internal/service"
	"github.com/formflowhq/formflow/internal/webhook"
)

func main() {
	cfg := config.Load()

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr)
		if err != nil {
			log.Printf("Warning: GELF init failed: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			log.Printf("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	// Connect to Postgres
	database, err := db.Open(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Printf("Connected to database")

	// Repositories
	userRepo := repository.NewUserRepo(database)
	formRepo := repository.NewFormRepo(database)
	fieldRepo := repository.NewFieldRepo(database)
	subRepo := repository.NewSubmissionRepo(database)
	folderRepo := repository.NewFolderRepo(database)
	inviteRepo := repository.NewInvitationRepo(database)

	// Webhook dispatcher
	dispatcher := webhook.NewDispatcher(
		webhook.NewRepoStore(formRepo, fieldRepo, subRepo),
		cfg.FormEventURL,
		cfg.SubmissionEventURL,
		cfg.WebhookTimeout,
		webhook.RetryPolicy{MaxAttempts: cfg.LookupAttempts, Delay: cfg.LookupDelay},
	)

	// Services
	inviteSvc := service.NewInviteService(inviteRepo)
	authSvc := service.NewAuthService(userRepo, inviteSvc, cfg.JWTSecret)
	formSvc := service.NewFormService(formRepo, fieldRepo)
	subSvc := service.NewSubmissionService(subRepo)
	folderSvc := service.NewFolderService(folderRepo)
	analyticsSvc := service.NewAnalyticsService(formRepo, fieldRepo, subRepo)
	exportSvc := service.NewExportService(formRepo, fieldRepo, subRepo)
	integrationSvc := service.NewIntegrationService(formRepo, fieldRepo, cfg.CreateSheetURL, cfg.WebhookTimeout)

	// Wizard session store
	sessions := flow.NewSessionStore(cfg.SessionTTL)
	defer sessions.Close()

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	formH := handler.NewFormHandler(formSvc, analyticsSvc, dispatcher)
	subH := handler.NewSubmissionHandler(subSvc, formSvc, exportSvc)
	folderH := handler.NewFolderHandler(folderSvc)
	inviteH := handler.NewInviteHandler(inviteSvc)
	integrationH := handler.NewIntegrationHandler(integrationSvc)
	dashH := handler.NewDashboardHandler(formSvc, subSvc, folderSvc)
	publicH := handler.NewPublicHandler(formSvc, subSvc, dispatcher)
	sessionH := handler.NewSessionHandler(formSvc, subSvc, sessions, dispatcher)
	webhookH := handler.NewWebhookHandler(dispatcher)

	// Router
	r := router.New(cfg.JWTSecret, authH, formH, subH, folderH, inviteH, integrationH, dashH, publicH, sessionH, webhookH)

	// Start HTTP immediately; run migrations and admin seeding in background
	// so a slow or briefly unreachable database doesn't block startup.
	go func() {
		ctx := context.Background()
		log.Printf("Background init: running migrations...")
		if err := db.Migrate(ctx, database); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Printf("Background init: seeding admin user...")
		if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
			log.Printf("Warning: failed to seed admin: %v", err)
		}
		log.Printf("Background init: done")
	}()

	log.Printf("FormFlow server starting on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
