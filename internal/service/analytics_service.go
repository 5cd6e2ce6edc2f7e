package service

import (
	"context"
	"strings"

	"github.com/formflowhq/formflow/internal/models"
)

// AnalyticsStore is the read surface the analytics aggregation needs.
type AnalyticsStore interface {
	CountByFormID(ctx context.Context, formID string) (int, error)
	ListResponsesByForm(ctx context.Context, formID string) ([]models.ResponseWithField, error)
}

type AnalyticsService struct {
	forms     FormStore
	fields    FieldStore
	responses AnalyticsStore
}

func NewAnalyticsService(forms FormStore, fields FieldStore, responses AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{forms: forms, fields: fields, responses: responses}
}

// FieldStats aggregates answers to a single question across all submissions.
type FieldStats struct {
	FieldID      string         `json:"fieldId"`
	Label        string         `json:"label"`
	Type         string         `json:"type"`
	Answered     int            `json:"answered"`
	ResponseRate float64        `json:"responseRate"`
	OptionCounts map[string]int `json:"optionCounts,omitempty"`
	AvgLength    float64        `json:"avgLength,omitempty"`
}

type FormAnalytics struct {
	FormID          string       `json:"formId"`
	SubmissionCount int          `json:"submissionCount"`
	Fields          []FieldStats `json:"fields"`
}

// ForForm computes per-field answer counts and distributions for a form the
// user owns. Checkbox answers are stored as comma-joined lists and are split
// back out so each picked option counts once.
func (s *AnalyticsService) ForForm(ctx context.Context, userID, formID string) (*FormAnalytics, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil || form.UserID != userID {
		return nil, ErrFormNotFound
	}

	total, err := s.responses.CountByFormID(ctx, formID)
	if err != nil {
		return nil, err
	}
	fields, err := s.fields.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListResponsesByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	byField := make(map[string][]string, len(fields))
	for _, r := range responses {
		if r.Value == nil || *r.Value == "" {
			continue
		}
		byField[r.FieldID] = append(byField[r.FieldID], *r.Value)
	}

	out := &FormAnalytics{FormID: formID, SubmissionCount: total}
	for _, f := range fields {
		answers := byField[f.ID]
		st := FieldStats{
			FieldID:  f.ID,
			Label:    f.Label,
			Type:     f.Type,
			Answered: len(answers),
		}
		if total > 0 {
			st.ResponseRate = float64(len(answers)) / float64(total)
		}
		switch {
		case f.IsChoice():
			st.OptionCounts = countOptions(f, answers)
		default:
			st.AvgLength = avgLength(answers)
		}
		out.Fields = append(out.Fields, st)
	}
	return out, nil
}

func countOptions(f models.FormField, answers []string) map[string]int {
	counts := make(map[string]int, len(f.Options))
	for _, opt := range f.Options {
		counts[opt] = 0
	}
	for _, a := range answers {
		if f.Type == models.FieldCheckbox {
			for _, part := range strings.Split(a, ", ") {
				counts[part]++
			}
			continue
		}
		counts[a]++
	}
	return counts
}

func avgLength(answers []string) float64 {
	if len(answers) == 0 {
		return 0
	}
	var total int
	for _, a := range answers {
		total += len([]rune(a))
	}
	return float64(total) / float64(len(answers))
}
