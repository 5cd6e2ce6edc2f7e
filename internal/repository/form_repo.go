package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/formflowhq/formflow/internal/models"
)

type FormRepo struct {
	db *sql.DB
}

func NewFormRepo(db *sql.DB) *FormRepo {
	return &FormRepo{db: db}
}

const formColumns = `id, user_id, folder_id, title, description, slug, is_published,
	allow_multiple_submissions, show_progress_bar, require_login, success_message,
	submit_button_text, theme_color, show_welcome_screen, welcome_message,
	welcome_button_text, callback_url, integration, created_at, updated_at`

func (r *FormRepo) Create(ctx context.Context, form *models.Form) error {
	integration, err := jsonbOrNil(form.Integration)
	if err != nil {
		return fmt.Errorf("marshal integration: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO forms (`+formColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		form.ID, form.UserID, form.FolderID, form.Title, nullStr(form.Description),
		form.Slug, form.IsPublished, form.AllowMultipleSubmissions, form.ShowProgressBar,
		form.RequireLogin, form.SuccessMessage, form.SubmitButtonText, form.ThemeColor,
		form.ShowWelcomeScreen, nullStr(form.WelcomeMessage), nullStr(form.WelcomeButtonText),
		form.CallbackURL, integration, form.CreatedAt, form.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1`, id)
	return scanForm(row)
}

// FindPublishedBySlug is the public form lookup: only published forms resolve.
func (r *FormRepo) FindPublishedBySlug(ctx context.Context, slug string) (*models.Form, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+formColumns+` FROM forms WHERE slug = $1 AND is_published = true`, slug)
	return scanForm(row)
}

// FindAllByUser lists a user's forms newest-updated first. folderID filters
// to one folder; rootOnly limits to forms outside any folder.
func (r *FormRepo) FindAllByUser(ctx context.Context, userID string, folderID *string, rootOnly bool) ([]models.Form, error) {
	query := `SELECT ` + formColumns + ` FROM forms WHERE user_id = $1`
	args := []any{userID}
	switch {
	case folderID != nil:
		query += ` AND folder_id = $2`
		args = append(args, *folderID)
	case rootOnly:
		query += ` AND folder_id IS NULL`
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var forms []models.Form
	for rows.Next() {
		f, err := scanFormRow(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

func (r *FormRepo) Update(ctx context.Context, form *models.Form) error {
	integration, err := jsonbOrNil(form.Integration)
	if err != nil {
		return fmt.Errorf("marshal integration: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE forms SET folder_id=$2, title=$3, description=$4, slug=$5, is_published=$6,
			allow_multiple_submissions=$7, show_progress_bar=$8, require_login=$9,
			success_message=$10, submit_button_text=$11, theme_color=$12,
			show_welcome_screen=$13, welcome_message=$14, welcome_button_text=$15,
			callback_url=$16, integration=$17, updated_at=$18
		WHERE id=$1`,
		form.ID, form.FolderID, form.Title, nullStr(form.Description), form.Slug,
		form.IsPublished, form.AllowMultipleSubmissions, form.ShowProgressBar,
		form.RequireLogin, form.SuccessMessage, form.SubmitButtonText, form.ThemeColor,
		form.ShowWelcomeScreen, nullStr(form.WelcomeMessage), nullStr(form.WelcomeButtonText),
		form.CallbackURL, integration, form.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	return nil
}

// UpdateIntegration persists only the spreadsheet-sync state.
func (r *FormRepo) UpdateIntegration(ctx context.Context, formID string, settings *models.IntegrationSettings) error {
	integration, err := jsonbOrNil(settings)
	if err != nil {
		return fmt.Errorf("marshal integration: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE forms SET integration = $2, updated_at = now() WHERE id = $1`,
		formID, integration)
	if err != nil {
		return fmt.Errorf("update integration: %w", err)
	}
	return nil
}

// MoveToFolder reassigns a form; a nil folderID moves it to the root.
func (r *FormRepo) MoveToFolder(ctx context.Context, formID string, folderID *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE forms SET folder_id = $2, updated_at = now() WHERE id = $1`, formID, folderID)
	if err != nil {
		return fmt.Errorf("move form: %w", err)
	}
	return nil
}

func (r *FormRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	return nil
}

// SlugExists probes for a taken slug during collision suffixing.
func (r *FormRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM forms WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe slug: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row *sql.Row) (*models.Form, error) {
	f, err := scanFormRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func scanFormRow(s rowScanner) (*models.Form, error) {
	var f models.Form
	var description, welcomeMsg, welcomeBtn sql.NullString
	var integration []byte
	err := s.Scan(&f.ID, &f.UserID, &f.FolderID, &f.Title, &description, &f.Slug,
		&f.IsPublished, &f.AllowMultipleSubmissions, &f.ShowProgressBar, &f.RequireLogin,
		&f.SuccessMessage, &f.SubmitButtonText, &f.ThemeColor, &f.ShowWelcomeScreen,
		&welcomeMsg, &welcomeBtn, &f.CallbackURL, &integration, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan form: %w", err)
	}
	f.Description = strOrEmpty(description)
	f.WelcomeMessage = strOrEmpty(welcomeMsg)
	f.WelcomeButtonText = strOrEmpty(welcomeBtn)
	if len(integration) > 0 && string(integration) != "null" {
		var settings models.IntegrationSettings
		if err := json.Unmarshal(integration, &settings); err == nil {
			f.Integration = &settings
		}
	}
	return &f, nil
}
