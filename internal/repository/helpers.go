package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/formflowhq/formflow/internal/models"
)

// nullStr maps "" to SQL NULL so optional text columns stay NULL instead
// of collecting empty strings.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func strOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// jsonbOrNil marshals settings for the jsonb column, passing NULL for nil.
func jsonbOrNil(settings *models.IntegrationSettings) (any, error) {
	if settings == nil {
		return nil, nil
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// optionsOrNil marshals a field's options for jsonb, passing NULL when the
// field has none.
func optionsOrNil(opts []string) (any, error) {
	if len(opts) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// unmarshalOptions decodes a jsonb options column into an ordered string list.
func unmarshalOptions(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil
	}
	return opts
}
