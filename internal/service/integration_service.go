package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/formflowhq/formflow/internal/models"
)

var ErrNoIntegrationEndpoint = errors.New("spreadsheet endpoint not configured")

// IntegrationStore extends the form read surface with the integration
// column writer.
type IntegrationStore interface {
	FormStore
	UpdateIntegration(ctx context.Context, formID string, settings *models.IntegrationSettings) error
}

// IntegrationService provisions a linked spreadsheet for a form by calling
// the external sheet-creation endpoint and recording the outcome on the
// form row.
type IntegrationService struct {
	forms     IntegrationStore
	fields    FieldStore
	client    *http.Client
	createURL string
}

func NewIntegrationService(forms IntegrationStore, fields FieldStore, createURL string, timeout time.Duration) *IntegrationService {
	return &IntegrationService{
		forms:     forms,
		fields:    fields,
		client:    &http.Client{Timeout: timeout},
		createURL: createURL,
	}
}

type createSheetRequest struct {
	FormID    string          `json:"formId"`
	FormTitle string          `json:"formTitle"`
	Questions []sheetQuestion `json:"questions"`
}

type sheetQuestion struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type createSheetResponse struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	SpreadsheetURL string `json:"spreadsheetUrl"`
}

// CreateSpreadsheet provisions a spreadsheet for the form and stores the
// resulting link. The integration row is marked pending before the call and
// success or error after, so a crash mid-call leaves a visible pending state
// rather than a silent gap.
func (s *IntegrationService) CreateSpreadsheet(ctx context.Context, userID, formID string) (*models.IntegrationSettings, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil || form.UserID != userID {
		return nil, ErrFormNotFound
	}
	if s.createURL == "" {
		return nil, ErrNoIntegrationEndpoint
	}

	pending := &models.IntegrationSettings{SyncStatus: "pending"}
	if err := s.forms.UpdateIntegration(ctx, formID, pending); err != nil {
		return nil, err
	}

	settings, callErr := s.provision(ctx, form)
	if callErr != nil {
		failed := &models.IntegrationSettings{SyncStatus: "error", SyncError: callErr.Error()}
		if err := s.forms.UpdateIntegration(ctx, formID, failed); err != nil {
			return nil, err
		}
		return failed, nil
	}
	if err := s.forms.UpdateIntegration(ctx, formID, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Recreate drops the stored link and provisions a fresh spreadsheet.
func (s *IntegrationService) Recreate(ctx context.Context, userID, formID string) (*models.IntegrationSettings, error) {
	return s.CreateSpreadsheet(ctx, userID, formID)
}

// Disconnect clears the integration from the form.
func (s *IntegrationService) Disconnect(ctx context.Context, userID, formID string) error {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return err
	}
	if form == nil || form.UserID != userID {
		return ErrFormNotFound
	}
	return s.forms.UpdateIntegration(ctx, formID, nil)
}

func (s *IntegrationService) provision(ctx context.Context, form *models.Form) (*models.IntegrationSettings, error) {
	fields, err := s.fields.ListByForm(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	payload := createSheetRequest{
		FormID:    form.ID,
		FormTitle: form.Title,
		Questions: make([]sheetQuestion, 0, len(fields)),
	}
	for _, f := range fields {
		payload.Questions = append(payload.Questions, sheetQuestion{ID: f.ID, Title: f.Label, Type: f.Type})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sheet request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.createURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call sheet endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sheet endpoint returned %d", resp.StatusCode)
	}

	var out createSheetResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sheet response: %w", err)
	}
	if out.SpreadsheetID == "" {
		return nil, errors.New("sheet endpoint returned no spreadsheet id")
	}
	return &models.IntegrationSettings{
		SpreadsheetID:  out.SpreadsheetID,
		SpreadsheetURL: out.SpreadsheetURL,
		SyncStatus:     "success",
	}, nil
}
