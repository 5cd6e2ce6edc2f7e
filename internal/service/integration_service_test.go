package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflowhq/formflow/internal/models"
)

func integrationFixture(t *testing.T, createURL string) (*IntegrationService, *memForms, *models.Form) {
	t.Helper()
	forms := newMemForms()
	form := &models.Form{ID: "form-1", UserID: "user-1", Title: "Survey", Slug: "survey"}
	require.NoError(t, forms.Create(context.Background(), form))
	require.NoError(t, forms.ReplaceAll(context.Background(), form.ID, []models.FormField{
		{ID: "f1", FormID: form.ID, Type: models.FieldName, Label: "Name", OrderIndex: 0},
	}))
	return NewIntegrationService(forms, forms, createURL, time.Second), forms, form
}

func TestCreateSpreadsheetSuccess(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{
			"spreadsheetId":  "sheet-1",
			"spreadsheetUrl": "https://sheets.example.com/sheet-1",
		})
	}))
	defer srv.Close()

	svc, forms, form := integrationFixture(t, srv.URL)

	settings, err := svc.CreateSpreadsheet(context.Background(), "user-1", form.ID)
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", settings.SpreadsheetID)
	assert.Equal(t, "success", settings.SyncStatus)

	assert.Equal(t, "form-1", gotBody["formId"])
	assert.Equal(t, "Survey", gotBody["formTitle"])
	questions := gotBody["questions"].([]any)
	require.Len(t, questions, 1)
	assert.Equal(t, "Name", questions[0].(map[string]any)["title"])

	stored, err := forms.FindByID(context.Background(), form.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Integration)
	assert.Equal(t, "sheet-1", stored.Integration.SpreadsheetID)
}

func TestCreateSpreadsheetEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc, forms, form := integrationFixture(t, srv.URL)

	settings, err := svc.CreateSpreadsheet(context.Background(), "user-1", form.ID)
	require.NoError(t, err, "endpoint failure is recorded, not returned")
	assert.Equal(t, "error", settings.SyncStatus)
	assert.NotEmpty(t, settings.SyncError)

	stored, _ := forms.FindByID(context.Background(), form.ID)
	require.NotNil(t, stored.Integration)
	assert.Equal(t, "error", stored.Integration.SyncStatus)
}

func TestCreateSpreadsheetRequiresEndpoint(t *testing.T) {
	svc, _, form := integrationFixture(t, "")
	_, err := svc.CreateSpreadsheet(context.Background(), "user-1", form.ID)
	assert.ErrorIs(t, err, ErrNoIntegrationEndpoint)
}

func TestIntegrationOwnershipAndDisconnect(t *testing.T) {
	svc, forms, form := integrationFixture(t, "http://unused.invalid")

	_, err := svc.CreateSpreadsheet(context.Background(), "user-2", form.ID)
	assert.ErrorIs(t, err, ErrFormNotFound)

	require.NoError(t, forms.UpdateIntegration(context.Background(), form.ID, &models.IntegrationSettings{SpreadsheetID: "sheet-1"}))
	require.NoError(t, svc.Disconnect(context.Background(), "user-1", form.ID))

	stored, _ := forms.FindByID(context.Background(), form.ID)
	assert.Nil(t, stored.Integration)
}
