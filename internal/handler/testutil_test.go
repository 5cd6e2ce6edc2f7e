package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/formflowhq/formflow/internal/flow"
	"github.com/formflowhq/formflow/internal/models"
	"github.com/formflowhq/formflow/internal/service"
	"github.com/formflowhq/formflow/internal/webhook"
)

// fakeFormStore backs the handler tests with a couple of fixed forms.
type fakeFormStore struct {
	forms  []*models.Form
	fields map[string][]models.FormField
}

func (s *fakeFormStore) Create(ctx context.Context, form *models.Form) error {
	cp := *form
	s.forms = append(s.forms, &cp)
	return nil
}

func (s *fakeFormStore) FindByID(ctx context.Context, id string) (*models.Form, error) {
	for _, f := range s.forms {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeFormStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Form, error) {
	for _, f := range s.forms {
		if f.Slug == slug && f.IsPublished {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeFormStore) FindAllByUser(ctx context.Context, userID string, folderID *string, rootOnly bool) ([]models.Form, error) {
	var out []models.Form
	for _, f := range s.forms {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeFormStore) Update(ctx context.Context, form *models.Form) error { return nil }

func (s *fakeFormStore) MoveToFolder(ctx context.Context, formID string, folderID *string) error {
	return nil
}

func (s *fakeFormStore) Delete(ctx context.Context, id string) error { return nil }

func (s *fakeFormStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, f := range s.forms {
		if f.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFormStore) ListByForm(ctx context.Context, formID string) ([]models.FormField, error) {
	return append([]models.FormField(nil), s.fields[formID]...), nil
}

func (s *fakeFormStore) ReplaceAll(ctx context.Context, formID string, fields []models.FormField) error {
	if s.fields == nil {
		s.fields = make(map[string][]models.FormField)
	}
	s.fields[formID] = append([]models.FormField(nil), fields...)
	return nil
}

// fakeSubStore records submissions and answers nothing else.
type fakeSubStore struct {
	created   []*models.Submission
	responses map[string][]models.FieldResponse
}

func (s *fakeSubStore) CreateWithResponses(ctx context.Context, sub *models.Submission, responses []models.FieldResponse) error {
	if s.responses == nil {
		s.responses = make(map[string][]models.FieldResponse)
	}
	cp := *sub
	s.created = append(s.created, &cp)
	s.responses[sub.ID] = responses
	return nil
}

func (s *fakeSubStore) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	for _, sub := range s.created {
		if sub.ID == id {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeSubStore) FindByFormID(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	return nil, 0, nil
}

func (s *fakeSubStore) Search(ctx context.Context, formID, query string, limit int) ([]models.Submission, error) {
	return nil, nil
}

func (s *fakeSubStore) Delete(ctx context.Context, id string) error { return nil }

func (s *fakeSubStore) CountByFormID(ctx context.Context, formID string) (int, error) {
	return len(s.created), nil
}

func (s *fakeSubStore) ListResponses(ctx context.Context, submissionID string) ([]models.ResponseWithField, error) {
	return nil, nil
}

func (s *fakeSubStore) ListResponsesByForm(ctx context.Context, formID string) ([]models.ResponseWithField, error) {
	return nil, nil
}

// nullWebhookStore makes the dispatcher a no-op for handler tests.
type nullWebhookStore struct{}

func (nullWebhookStore) FormWithFields(ctx context.Context, formID string) (*models.Form, []models.FormField, error) {
	return nil, nil, nil
}

func (nullWebhookStore) SubmissionBundle(ctx context.Context, submissionID string) (*models.Submission, *models.Form, []models.ResponseWithField, error) {
	return nil, nil, nil, nil
}

type publicFixture struct {
	router *chi.Mux
	forms  *fakeFormStore
	subs   *fakeSubStore
}

func newPublicFixture(t *testing.T) *publicFixture {
	t.Helper()

	forms := &fakeFormStore{fields: make(map[string][]models.FormField)}
	published := &models.Form{
		ID:          "form-1",
		UserID:      "user-1",
		Title:       "Survey",
		Slug:        "survey",
		IsPublished: true,
	}
	draft := &models.Form{ID: "form-2", UserID: "user-1", Title: "Draft", Slug: "draft"}
	require.NoError(t, forms.Create(context.Background(), published))
	require.NoError(t, forms.Create(context.Background(), draft))
	require.NoError(t, forms.ReplaceAll(context.Background(), published.ID, []models.FormField{
		{ID: "name", FormID: published.ID, Type: models.FieldName, Label: "Name", IsRequired: true, OrderIndex: 0},
		{ID: "email", FormID: published.ID, Type: models.FieldEmail, Label: "Email", IsRequired: true, OrderIndex: 1},
	}))

	subs := &fakeSubStore{}
	formSvc := service.NewFormService(forms, forms)
	subSvc := service.NewSubmissionService(subs)
	dispatcher := webhook.NewDispatcher(nullWebhookStore{}, "", "", time.Second, webhook.RetryPolicy{MaxAttempts: 1})
	sessions := flow.NewSessionStore(time.Minute)
	t.Cleanup(sessions.Close)

	publicH := NewPublicHandler(formSvc, subSvc, dispatcher)
	sessionH := NewSessionHandler(formSvc, subSvc, sessions, dispatcher)

	r := chi.NewRouter()
	r.Route("/form/{slug}", func(r chi.Router) {
		r.Get("/", publicH.GetForm)
		r.Post("/submissions", publicH.Submit)
		r.Post("/session", sessionH.Create)
		r.Route("/session/{sessionId}", func(r chi.Router) {
			r.Get("/", sessionH.Get)
			r.Post("/start", sessionH.Start)
			r.Post("/next", sessionH.Next)
			r.Post("/previous", sessionH.Previous)
			r.Post("/reset", sessionH.Reset)
		})
	})

	return &publicFixture{router: r, forms: forms, subs: subs}
}

func (f *publicFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
