package webhook

import (
	"context"

	"github.com/formflowhq/formflow/internal/models"
	"github.com/formflowhq/formflow/internal/repository"
)

// RepoStore adapts the SQL repositories to the dispatcher's read surface.
type RepoStore struct {
	forms  *repository.FormRepo
	fields *repository.FieldRepo
	subs   *repository.SubmissionRepo
}

func NewRepoStore(forms *repository.FormRepo, fields *repository.FieldRepo, subs *repository.SubmissionRepo) *RepoStore {
	return &RepoStore{forms: forms, fields: fields, subs: subs}
}

func (s *RepoStore) FormWithFields(ctx context.Context, formID string) (*models.Form, []models.FormField, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	if form == nil {
		return nil, nil, nil
	}
	fields, err := s.fields.ListByForm(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	return form, fields, nil
}

func (s *RepoStore) SubmissionBundle(ctx context.Context, submissionID string) (*models.Submission, *models.Form, []models.ResponseWithField, error) {
	sub, err := s.subs.FindByID(ctx, submissionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if sub == nil {
		return nil, nil, nil, nil
	}
	form, err := s.forms.FindByID(ctx, sub.FormID)
	if err != nil {
		return nil, nil, nil, err
	}
	responses, err := s.subs.ListResponses(ctx, submissionID)
	if err != nil {
		return nil, nil, nil, err
	}
	return sub, form, responses, nil
}
