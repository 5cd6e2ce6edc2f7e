package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formflowhq/formflow/internal/flow"
	"github.com/formflowhq/formflow/internal/models"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrValidation         = errors.New("validation failed")
)

type SubmissionStore interface {
	CreateWithResponses(ctx context.Context, sub *models.Submission, responses []models.FieldResponse) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByFormID(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error)
	Search(ctx context.Context, formID, query string, limit int) ([]models.Submission, error)
	Delete(ctx context.Context, id string) error
	CountByFormID(ctx context.Context, formID string) (int, error)
	ListResponses(ctx context.Context, submissionID string) ([]models.ResponseWithField, error)
	ListResponsesByForm(ctx context.Context, formID string) ([]models.ResponseWithField, error)
}

// ValidationError carries per-field messages back to the public runtime.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type SubmissionService struct {
	subs SubmissionStore
}

func NewSubmissionService(subs SubmissionStore) *SubmissionService {
	return &SubmissionService{subs: subs}
}

// Submit validates the complete answer set and persists one submission row
// plus one response row per field, in a single transaction. Unanswered
// optional fields get a NULL value row, keeping at most one response per
// field per submission.
func (s *SubmissionService) Submit(ctx context.Context, form *models.Form, fields []models.FormField, answers map[string]flow.Value, submittedByEmail, userAgent string) (*models.Submission, error) {
	if errs := flow.ValidateAll(fields, answers); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	data := make(map[string]any, len(answers))
	for fieldID, v := range answers {
		data[fieldID] = v.Raw()
	}

	sub := &models.Submission{
		ID:               uuid.NewString(),
		FormID:           form.ID,
		SubmissionData:   data,
		SubmittedAt:      time.Now().UTC(),
		SubmittedByEmail: submittedByEmail,
		UserAgent:        userAgent,
	}

	responses := make([]models.FieldResponse, 0, len(fields))
	for _, field := range fields {
		var value *string
		if v, ok := answers[field.ID]; ok && !v.IsEmpty() {
			joined := v.Joined()
			value = &joined
		}
		responses = append(responses, models.FieldResponse{
			ID:           uuid.NewString(),
			SubmissionID: sub.ID,
			FieldID:      field.ID,
			Value:        value,
			CreatedAt:    sub.SubmittedAt,
		})
	}

	if err := s.subs.CreateWithResponses(ctx, sub, responses); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) List(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.subs.FindByFormID(ctx, formID, skip, limit)
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, []models.ResponseWithField, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, ErrSubmissionNotFound
	}
	responses, err := s.subs.ListResponses(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sub, responses, nil
}

func (s *SubmissionService) Search(ctx context.Context, formID, query string, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.subs.Search(ctx, formID, query, limit)
}

func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubmissionNotFound
	}
	return s.subs.Delete(ctx, id)
}

func (s *SubmissionService) CountByForm(ctx context.Context, formID string) (int, error) {
	return s.subs.CountByFormID(ctx, formID)
}
