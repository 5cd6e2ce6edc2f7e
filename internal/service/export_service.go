package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"
)

type ExportService struct {
	forms       FormStore
	fields      FieldStore
	submissions SubmissionStore
}

func NewExportService(forms FormStore, fields FieldStore, submissions SubmissionStore) *ExportService {
	return &ExportService{forms: forms, fields: fields, submissions: submissions}
}

// CSV renders every submission to a form as CSV, newest first. The header
// is the submission timestamp followed by the field labels in question
// order. Returns the suggested filename alongside the bytes.
func (s *ExportService) CSV(ctx context.Context, userID, formID string) ([]byte, string, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, "", err
	}
	if form == nil || form.UserID != userID {
		return nil, "", ErrFormNotFound
	}

	fields, err := s.fields.ListByForm(ctx, formID)
	if err != nil {
		return nil, "", err
	}
	total, err := s.submissions.CountByFormID(ctx, formID)
	if err != nil {
		return nil, "", err
	}

	header := make([]string, 0, len(fields)+1)
	header = append(header, "Submitted At")
	for _, f := range fields {
		header = append(header, f.Label)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, "", fmt.Errorf("write csv header: %w", err)
	}

	if total > 0 {
		subs, _, err := s.submissions.FindByFormID(ctx, formID, 0, total)
		if err != nil {
			return nil, "", err
		}
		answers, err := s.answersBySubmission(ctx, formID)
		if err != nil {
			return nil, "", err
		}
		for _, sub := range subs {
			row := make([]string, 0, len(fields)+1)
			row = append(row, sub.SubmittedAt.Format(time.RFC3339))
			for _, f := range fields {
				row = append(row, answers[sub.ID][f.ID])
			}
			if err := w.Write(row); err != nil {
				return nil, "", fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("flush csv: %w", err)
	}
	name := fmt.Sprintf("%s-submissions-%s.csv", form.Slug, time.Now().Format("2006-01-02"))
	return buf.Bytes(), name, nil
}

func (s *ExportService) answersBySubmission(ctx context.Context, formID string) (map[string]map[string]string, error) {
	responses, err := s.submissions.ListResponsesByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]string)
	for _, r := range responses {
		byField := out[r.SubmissionID]
		if byField == nil {
			byField = make(map[string]string)
			out[r.SubmissionID] = byField
		}
		if r.Value != nil {
			byField[r.FieldID] = *r.Value
		}
	}
	return out, nil
}
