package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFormBySlug(t *testing.T) {
	f := newPublicFixture(t)

	rec := f.do(t, http.MethodGet, "/form/survey", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "survey", body["slug"])
	assert.Len(t, body["fields"], 2)
}

func TestGetFormHidesDraftsAndUnknownSlugs(t *testing.T) {
	f := newPublicFixture(t)

	rec := f.do(t, http.MethodGet, "/form/draft", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/form/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectSubmit(t *testing.T) {
	f := newPublicFixture(t)

	rec := f.do(t, http.MethodPost, "/form/survey/submissions", map[string]any{
		"answers": map[string]any{
			"name":  "Ana Silva",
			"email": "ana@example.com",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["submissionId"])
	require.Len(t, f.subs.created, 1)
	assert.Equal(t, "form-1", f.subs.created[0].FormID)
}

func TestDirectSubmitValidationFailure(t *testing.T) {
	f := newPublicFixture(t)

	rec := f.do(t, http.MethodPost, "/form/survey/submissions", map[string]any{
		"answers": map[string]any{
			"name":  "Ana Silva",
			"email": "not-an-email",
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Empty(t, f.subs.created)
}
