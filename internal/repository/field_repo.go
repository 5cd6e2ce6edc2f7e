package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/formflowhq/formflow/internal/models"
)

type FieldRepo struct {
	db *sql.DB
}

func NewFieldRepo(db *sql.DB) *FieldRepo {
	return &FieldRepo{db: db}
}

const fieldColumns = `id, form_id, type, label, description, placeholder,
	is_required, options, order_index, created_at, updated_at`

// ListByForm returns a form's fields in question order.
func (r *FieldRepo) ListByForm(ctx context.Context, formID string) ([]models.FormField, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+fieldColumns+` FROM form_fields WHERE form_id = $1 ORDER BY order_index`, formID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	var fields []models.FormField
	for rows.Next() {
		var f models.FormField
		var description, placeholder sql.NullString
		var options []byte
		if err := rows.Scan(&f.ID, &f.FormID, &f.Type, &f.Label, &description,
			&placeholder, &f.IsRequired, &options, &f.OrderIndex,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		f.Description = strOrEmpty(description)
		f.Placeholder = strOrEmpty(placeholder)
		f.Options = unmarshalOptions(options)
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ReplaceAll swaps a form's field set atomically. The builder saves the
// whole form, so fields are replaced wholesale rather than diffed.
func (r *FieldRepo) ReplaceAll(ctx context.Context, formID string, fields []models.FormField) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace fields: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM form_fields WHERE form_id = $1`, formID); err != nil {
		return fmt.Errorf("clear fields: %w", err)
	}
	for _, f := range fields {
		options, err := optionsOrNil(f.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO form_fields (`+fieldColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			f.ID, formID, f.Type, f.Label, nullStr(f.Description), nullStr(f.Placeholder),
			f.IsRequired, options, f.OrderIndex, f.CreatedAt, f.UpdatedAt); err != nil {
			return fmt.Errorf("insert field: %w", err)
		}
	}
	return tx.Commit()
}
