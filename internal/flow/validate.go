package flow

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/formflowhq/formflow/internal/models"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\(\d{2}\)\s\d{4,5}-\d{4}$`)
)

// ValidateField checks one answer against its field's rules and returns a
// user-facing message, or "" when the answer is acceptable. Type rules only
// apply to non-empty answers; emptiness is the required rule's concern.
func ValidateField(field models.FormField, value Value) string {
	if field.IsRequired && value.IsEmpty() {
		return "this field is required"
	}
	if field.Type == models.FieldTerms && field.IsRequired && value.Text != "accepted" {
		return "you must accept the terms to continue"
	}
	if value.IsEmpty() {
		return ""
	}

	switch field.Type {
	case models.FieldEmail:
		if !emailRe.MatchString(value.Text) {
			return "invalid email address"
		}
	case models.FieldURL:
		u, err := url.Parse(value.Text)
		if err != nil || !u.IsAbs() {
			return "invalid URL"
		}
	case models.FieldTel:
		if !phoneRe.MatchString(value.Text) {
			return "phone must match (11) 99999-9999"
		}
	case models.FieldName:
		if len(strings.Fields(value.Text)) < 2 {
			return "please enter your full name"
		}
	case models.FieldNumber:
		if _, err := strconv.ParseFloat(value.Text, 64); err != nil {
			return "digits only"
		}
	}
	return ""
}

// ValidateAll re-checks every field before a submission is persisted. The
// returned map is keyed by field ID.
func ValidateAll(fields []models.FormField, answers map[string]Value) map[string]string {
	errs := make(map[string]string)
	for _, field := range fields {
		if msg := ValidateField(field, answers[field.ID]); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs
}
