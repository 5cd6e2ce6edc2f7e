package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/formflowhq/formflow/internal/models"
)

type SubmissionRepo struct {
	db *sql.DB
}

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

// CreateWithResponses inserts the submission row and its per-field response
// rows in one transaction, so a partial failure leaves no orphaned rows.
func (r *SubmissionRepo) CreateWithResponses(ctx context.Context, sub *models.Submission, responses []models.FieldResponse) error {
	data, err := json.Marshal(sub.SubmissionData)
	if err != nil {
		return fmt.Errorf("marshal submission data: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO form_submissions (id, form_id, submission_data, submitted_at, submitted_by_email, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		sub.ID, sub.FormID, data, sub.SubmittedAt,
		nullStr(sub.SubmittedByEmail), nullStr(sub.UserAgent)); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	for _, resp := range responses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO form_field_responses (id, submission_id, field_id, value, file_url, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			resp.ID, sub.ID, resp.FieldID, resp.Value, resp.FileURL, resp.CreatedAt); err != nil {
			return fmt.Errorf("insert field response: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, form_id, submission_data, submitted_at, submitted_by_email, user_agent
		FROM form_submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

// FindByFormID lists a form's submissions newest first, with total count
// for pagination.
func (r *SubmissionRepo) FindByFormID(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM form_submissions WHERE form_id = $1`, formID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, form_id, submission_data, submitted_at, submitted_by_email, user_agent
		FROM form_submissions WHERE form_id = $1
		ORDER BY submitted_at DESC OFFSET $2 LIMIT $3`, formID, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, rows.Err()
}

// Search matches submissions whose answer blob contains the query text.
func (r *SubmissionRepo) Search(ctx context.Context, formID, query string, limit int) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, form_id, submission_data, submitted_at, submitted_by_email, user_agent
		FROM form_submissions
		WHERE form_id = $1 AND submission_data::text ILIKE '%' || $2 || '%'
		ORDER BY submitted_at DESC LIMIT $3`, formID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM form_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepo) CountByFormID(ctx context.Context, formID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM form_submissions WHERE form_id = $1`, formID).Scan(&n)
	return n, err
}

// ListResponses returns one submission's answers joined with field
// label/type/options, in question order.
func (r *SubmissionRepo) ListResponses(ctx context.Context, submissionID string) ([]models.ResponseWithField, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fr.id, fr.submission_id, fr.field_id, fr.value, fr.file_url, fr.created_at,
			ff.label, ff.type, ff.options, ff.order_index
		FROM form_field_responses fr
		JOIN form_fields ff ON ff.id = fr.field_id
		WHERE fr.submission_id = $1
		ORDER BY ff.order_index`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	return collectResponses(rows)
}

// ListResponsesByForm returns every answer to a form, grouped by submission
// in the returned order. Consumed by CSV export and analytics.
func (r *SubmissionRepo) ListResponsesByForm(ctx context.Context, formID string) ([]models.ResponseWithField, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fr.id, fr.submission_id, fr.field_id, fr.value, fr.file_url, fr.created_at,
			ff.label, ff.type, ff.options, ff.order_index
		FROM form_field_responses fr
		JOIN form_fields ff ON ff.id = fr.field_id
		JOIN form_submissions fs ON fs.id = fr.submission_id
		WHERE fs.form_id = $1
		ORDER BY fs.submitted_at DESC, ff.order_index`, formID)
	if err != nil {
		return nil, fmt.Errorf("list form responses: %w", err)
	}
	defer rows.Close()
	return collectResponses(rows)
}

func collectResponses(rows *sql.Rows) ([]models.ResponseWithField, error) {
	var out []models.ResponseWithField
	for rows.Next() {
		var resp models.ResponseWithField
		var options []byte
		if err := rows.Scan(&resp.ID, &resp.SubmissionID, &resp.FieldID, &resp.Value,
			&resp.FileURL, &resp.CreatedAt, &resp.FieldLabel, &resp.FieldType,
			&options, &resp.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		resp.FieldOptions = unmarshalOptions(options)
		out = append(out, resp)
	}
	return out, rows.Err()
}

func scanSubmission(s rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var data []byte
	var email, userAgent sql.NullString
	err := s.Scan(&sub.ID, &sub.FormID, &data, &sub.SubmittedAt, &email, &userAgent)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.SubmittedByEmail = strOrEmpty(email)
	sub.UserAgent = strOrEmpty(userAgent)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &sub.SubmissionData); err != nil {
			return nil, fmt.Errorf("unmarshal submission data: %w", err)
		}
	}
	return &sub, nil
}
