package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema add-only. Statements are idempotent so the
// server can run them on every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            uuid PRIMARY KEY,
		email         text NOT NULL UNIQUE,
		password_hash text NOT NULL,
		name          text NOT NULL,
		role          text NOT NULL DEFAULT 'user',
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS folders (
		id          uuid PRIMARY KEY,
		user_id     uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        text NOT NULL,
		order_index integer NOT NULL DEFAULT 0,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS forms (
		id                         uuid PRIMARY KEY,
		user_id                    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		folder_id                  uuid REFERENCES folders(id) ON DELETE SET NULL,
		title                      text NOT NULL,
		description                text,
		slug                       text NOT NULL UNIQUE,
		is_published               boolean NOT NULL DEFAULT false,
		allow_multiple_submissions boolean NOT NULL DEFAULT false,
		show_progress_bar          boolean NOT NULL DEFAULT true,
		require_login              boolean NOT NULL DEFAULT false,
		success_message            text NOT NULL DEFAULT 'Obrigado pela sua resposta!',
		submit_button_text         text NOT NULL DEFAULT 'Enviar',
		theme_color                text NOT NULL DEFAULT '#6366f1',
		show_welcome_screen        boolean NOT NULL DEFAULT false,
		welcome_message            text,
		welcome_button_text        text,
		callback_url               text,
		integration                jsonb,
		created_at                 timestamptz NOT NULL DEFAULT now(),
		updated_at                 timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS form_fields (
		id          uuid PRIMARY KEY,
		form_id     uuid NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		type        text NOT NULL,
		label       text NOT NULL,
		description text,
		placeholder text,
		is_required boolean NOT NULL DEFAULT false,
		options     jsonb,
		order_index integer NOT NULL,
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now(),
		UNIQUE (form_id, order_index)
	)`,
	`CREATE TABLE IF NOT EXISTS form_submissions (
		id                 uuid PRIMARY KEY,
		form_id            uuid NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		submission_data    jsonb NOT NULL,
		submitted_at       timestamptz NOT NULL DEFAULT now(),
		submitted_by_email text,
		user_agent         text
	)`,
	`CREATE TABLE IF NOT EXISTS form_field_responses (
		id            uuid PRIMARY KEY,
		submission_id uuid NOT NULL REFERENCES form_submissions(id) ON DELETE CASCADE,
		field_id      uuid NOT NULL REFERENCES form_fields(id) ON DELETE CASCADE,
		value         text,
		file_url      text,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		id           uuid PRIMARY KEY,
		user_id      uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		email        text,
		description  text,
		token        text NOT NULL UNIQUE,
		max_uses     integer NOT NULL DEFAULT 1,
		current_uses integer NOT NULL DEFAULT 0,
		expires_at   timestamptz NOT NULL,
		is_active    boolean NOT NULL DEFAULT true,
		used_at      timestamptz,
		created_at   timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forms_user ON forms(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_forms_folder ON forms(folder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fields_form ON form_fields(form_id, order_index)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_form ON form_submissions(form_id, submitted_at)`,
	`CREATE INDEX IF NOT EXISTS idx_responses_submission ON form_field_responses(submission_id)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
