package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflowhq/formflow/internal/models"
)

type fakeStore struct {
	form      *models.Form
	fields    []models.FormField
	formReads atomic.Int32
	sub       *models.Submission
	subForm   *models.Form
	responses []models.ResponseWithField
	visibleAt int32
}

func (s *fakeStore) FormWithFields(ctx context.Context, formID string) (*models.Form, []models.FormField, error) {
	reads := s.formReads.Add(1)
	if s.form == nil || reads < s.visibleAt {
		return nil, nil, nil
	}
	return s.form, s.fields, nil
}

func (s *fakeStore) SubmissionBundle(ctx context.Context, submissionID string) (*models.Submission, *models.Form, []models.ResponseWithField, error) {
	return s.sub, s.subForm, s.responses, nil
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}
}

func TestDispatchFormEventDeliversSnakeCasePayload(t *testing.T) {
	var body []byte
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &fakeStore{
		form: &models.Form{ID: "form-1", Title: "Survey", Slug: "survey", IsPublished: true},
		fields: []models.FormField{
			{ID: "f1", Label: "Name", Type: models.FieldName, IsRequired: true, OrderIndex: 0},
		},
	}
	d := NewDispatcher(store, srv.URL, "", time.Second, testPolicy())

	res := d.DispatchFormEvent(context.Background(), "form-1", ActionCreate)
	require.True(t, res.Success)
	assert.Equal(t, int32(1), posts.Load())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "create", payload["action"])

	form := payload["form"].(map[string]any)
	assert.Equal(t, "survey", form["slug"])
	assert.Contains(t, form, "is_published")
	assert.Contains(t, form, "theme_color")

	fields := payload["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Contains(t, fields[0].(map[string]any), "is_required")
}

func TestDispatchFormEventRetriesThenGivesUp(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
	}))
	defer srv.Close()

	store := &fakeStore{}
	d := NewDispatcher(store, srv.URL, "", time.Second, testPolicy())

	res := d.DispatchFormEvent(context.Background(), "missing", ActionUpdate)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, int32(0), posts.Load(), "no POST should happen for a form that never appears")
	assert.Equal(t, int32(3), store.formReads.Load())
}

func TestDispatchFormEventWaitsOutReadLag(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
	}))
	defer srv.Close()

	store := &fakeStore{
		form:      &models.Form{ID: "form-1", Title: "Survey", Slug: "survey"},
		visibleAt: 3,
	}
	d := NewDispatcher(store, srv.URL, "", time.Second, testPolicy())

	res := d.DispatchFormEvent(context.Background(), "form-1", ActionCreate)
	assert.True(t, res.Success)
	assert.Equal(t, int32(3), store.formReads.Load())
	assert.Equal(t, int32(1), posts.Load())
}

func TestDispatchFormEventRejectsUnknownAction(t *testing.T) {
	d := NewDispatcher(&fakeStore{}, "http://unused.invalid", "", time.Second, testPolicy())
	res := d.DispatchFormEvent(context.Background(), "form-1", "delete")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestDispatchFormEventNoEndpointConfigured(t *testing.T) {
	store := &fakeStore{form: &models.Form{ID: "form-1"}}
	d := NewDispatcher(store, "", "", time.Second, testPolicy())

	res := d.DispatchFormEvent(context.Background(), "form-1", ActionCreate)
	assert.True(t, res.Success)
	assert.Equal(t, "no webhook endpoint configured", res.Message)
}

func TestDispatchSubmissionEventPayload(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	answer := "Ana Silva"
	store := &fakeStore{
		sub:     &models.Submission{ID: "sub-1", FormID: "form-1", SubmittedAt: time.Now()},
		subForm: &models.Form{ID: "form-1", Title: "Survey"},
		responses: []models.ResponseWithField{
			{
				FieldResponse: models.FieldResponse{FieldID: "f1", Value: &answer},
				FieldLabel:    "Name",
				FieldType:     models.FieldName,
			},
			{
				FieldResponse: models.FieldResponse{FieldID: "f2", Value: nil},
				FieldLabel:    "Plan",
				FieldType:     models.FieldSelect,
				FieldOptions:  []string{"Free", "Pro"},
			},
		},
	}
	d := NewDispatcher(store, "", srv.URL, time.Second, testPolicy())

	res := d.DispatchSubmissionEvent(context.Background(), "sub-1")
	require.True(t, res.Success)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Nil(t, payload["spreadsheetId"], "no integration means an explicit null")
	assert.Equal(t, "form-1", payload["formId"])

	responses := payload["responses"].([]any)
	require.Len(t, responses, 2)
	first := responses[0].(map[string]any)
	assert.Equal(t, "f1", first["questionId"])
	assert.Equal(t, "Ana Silva", first["answer"])
	second := responses[1].(map[string]any)
	assert.Equal(t, "", second["answer"])
}

func TestDispatchSubmissionEventWithIntegration(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	store := &fakeStore{
		sub: &models.Submission{ID: "sub-1", FormID: "form-1"},
		subForm: &models.Form{
			ID:          "form-1",
			Integration: &models.IntegrationSettings{SpreadsheetID: "sheet-9", SyncStatus: "success"},
		},
	}
	d := NewDispatcher(store, "", srv.URL, time.Second, testPolicy())

	res := d.DispatchSubmissionEvent(context.Background(), "sub-1")
	require.True(t, res.Success)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "sheet-9", payload["spreadsheetId"])
}

func TestDispatchSubmissionEventMissingSubmission(t *testing.T) {
	d := NewDispatcher(&fakeStore{}, "", "http://unused.invalid", time.Second, testPolicy())
	res := d.DispatchSubmissionEvent(context.Background(), "missing")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestPostReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := &fakeStore{form: &models.Form{ID: "form-1"}}
	d := NewDispatcher(store, srv.URL, "", time.Second, testPolicy())

	res := d.DispatchFormEvent(context.Background(), "form-1", ActionCreate)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}
