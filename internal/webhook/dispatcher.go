// Package webhook notifies the external automation service of form and
// submission events. Delivery is best-effort: failures are logged and
// reported to the caller, never propagated into the write that triggered
// the dispatch.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/formflowhq/formflow/internal/models"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Store is the read surface the dispatcher needs. FormWithFields returns a
// nil form when the row is not (yet) visible; SubmissionBundle returns a
// nil submission when the row does not exist.
type Store interface {
	FormWithFields(ctx context.Context, formID string) (*models.Form, []models.FormField, error)
	SubmissionBundle(ctx context.Context, submissionID string) (*models.Submission, *models.Form, []models.ResponseWithField, error)
}

// RetryPolicy bounds the sequential sleep-and-poll used to wait out
// read-after-write lag on just-written forms.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Result is the structured outcome of one dispatch attempt. It doubles as
// the HTTP handler response body.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Dispatcher struct {
	store              Store
	client             *http.Client
	formEventURL       string
	submissionEventURL string
	retry              RetryPolicy
}

func NewDispatcher(store Store, formEventURL, submissionEventURL string, timeout time.Duration, retry RetryPolicy) *Dispatcher {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Dispatcher{
		store:              store,
		client:             &http.Client{Timeout: timeout},
		formEventURL:       formEventURL,
		submissionEventURL: submissionEventURL,
		retry:              retry,
	}
}

// DispatchFormEvent delivers a form create/update projection. The triggering
// write may not be visible to this read path yet, so the lookup polls under
// the dispatcher's retry policy before giving up.
func (d *Dispatcher) DispatchFormEvent(ctx context.Context, formID, action string) Result {
	if action != ActionCreate && action != ActionUpdate {
		return Result{Success: false, Status: http.StatusBadRequest, Error: fmt.Sprintf("unknown action %q", action)}
	}

	form, fields, err := d.pollForm(ctx, formID)
	if err != nil {
		log.Printf("webhook: form %s lookup failed: %v", formID, err)
		return Result{Success: false, Status: http.StatusInternalServerError, Error: err.Error()}
	}
	if form == nil {
		log.Printf("webhook: form %s not found after %d attempts", formID, d.retry.MaxAttempts)
		return Result{Success: false, Status: http.StatusNotFound, Message: "form not found after retries"}
	}

	if d.formEventURL == "" {
		return Result{Success: true, Message: "no webhook endpoint configured"}
	}

	payload := buildFormEventPayload(form, fields, action)
	return d.post(ctx, d.formEventURL, payload, "form event")
}

// DispatchSubmissionEvent delivers one submission's answers. The submission
// row is written in the same transaction boundary as its responses, so a
// single read suffices here.
func (d *Dispatcher) DispatchSubmissionEvent(ctx context.Context, submissionID string) Result {
	sub, form, responses, err := d.store.SubmissionBundle(ctx, submissionID)
	if err != nil {
		log.Printf("webhook: submission %s lookup failed: %v", submissionID, err)
		return Result{Success: false, Status: http.StatusInternalServerError, Error: err.Error()}
	}
	if sub == nil {
		log.Printf("webhook: submission %s not found", submissionID)
		return Result{Success: false, Status: http.StatusNotFound, Message: "submission not found"}
	}

	if d.submissionEventURL == "" {
		return Result{Success: true, Message: "no webhook endpoint configured"}
	}

	payload := buildSubmissionEventPayload(sub, form, responses)
	return d.post(ctx, d.submissionEventURL, payload, "submission event")
}

// DispatchFormEventAsync runs the dispatch on a detached goroutine. The
// result is only logged; the caller's request path never waits on it.
func (d *Dispatcher) DispatchFormEventAsync(formID, action string) {
	go func() {
		res := d.DispatchFormEvent(context.Background(), formID, action)
		logResult("form event", formID, res)
	}()
}

func (d *Dispatcher) DispatchSubmissionEventAsync(submissionID string) {
	go func() {
		res := d.DispatchSubmissionEvent(context.Background(), submissionID)
		logResult("submission event", submissionID, res)
	}()
}

func (d *Dispatcher) pollForm(ctx context.Context, formID string) (*models.Form, []models.FormField, error) {
	for attempt := 1; ; attempt++ {
		form, fields, err := d.store.FormWithFields(ctx, formID)
		if err != nil {
			return nil, nil, err
		}
		if form != nil {
			return form, fields, nil
		}
		if attempt >= d.retry.MaxAttempts {
			return nil, nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(d.retry.Delay):
		}
	}
}

func (d *Dispatcher) post(ctx context.Context, url string, payload any, kind string) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Status: http.StatusInternalServerError, Error: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Status: http.StatusInternalServerError, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("webhook: %s delivery failed: %v", kind, err)
		return Result{Success: false, Status: http.StatusBadGateway, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("webhook: %s rejected: %s", kind, resp.Status)
		return Result{Success: false, Status: resp.StatusCode, Error: fmt.Sprintf("webhook failed: %d", resp.StatusCode)}
	}
	return Result{Success: true, Message: "webhook sent successfully", Status: resp.StatusCode}
}

func logResult(kind, id string, res Result) {
	if res.Success {
		log.Printf("webhook: %s for %s delivered: %s", kind, id, res.Message)
		return
	}
	log.Printf("Warning: webhook %s for %s failed (%d): %s %s", kind, id, res.Status, res.Message, res.Error)
}

func buildFormEventPayload(form *models.Form, fields []models.FormField, action string) models.FormEventPayload {
	payload := models.FormEventPayload{
		Action:    action,
		Timestamp: time.Now().UTC(),
		Form: models.FormEventForm{
			ID:                       form.ID,
			Title:                    form.Title,
			Description:              form.Description,
			Slug:                     form.Slug,
			ThemeColor:               form.ThemeColor,
			IsPublished:              form.IsPublished,
			AllowMultipleSubmissions: form.AllowMultipleSubmissions,
			SuccessMessage:           form.SuccessMessage,
			SubmitButtonText:         form.SubmitButtonText,
			WelcomeMessage:           form.WelcomeMessage,
			WelcomeButtonText:        form.WelcomeButtonText,
			ShowWelcomeScreen:        form.ShowWelcomeScreen,
			CreatedAt:                form.CreatedAt,
			UpdatedAt:                form.UpdatedAt,
		},
		Fields: make([]models.FormEventField, 0, len(fields)),
	}
	for _, f := range fields {
		payload.Fields = append(payload.Fields, models.FormEventField{
			ID:          f.ID,
			Label:       f.Label,
			Type:        f.Type,
			Placeholder: f.Placeholder,
			IsRequired:  f.IsRequired,
			Options:     f.Options,
			OrderIndex:  f.OrderIndex,
		})
	}
	return payload
}

func buildSubmissionEventPayload(sub *models.Submission, form *models.Form, responses []models.ResponseWithField) models.SubmissionEventPayload {
	var spreadsheetID *string
	if form != nil {
		if id := form.SpreadsheetID(); id != "" {
			spreadsheetID = &id
		}
	}
	payload := models.SubmissionEventPayload{
		SpreadsheetID:    spreadsheetID,
		SubmissionID:     sub.ID,
		SubmittedAt:      sub.SubmittedAt,
		SubmittedByEmail: sub.SubmittedByEmail,
		Responses:        make([]models.SubmissionEventResponse, 0, len(responses)),
		Timestamp:        time.Now().UTC(),
	}
	if form != nil {
		payload.FormID = form.ID
		payload.FormTitle = form.Title
	}
	for _, r := range responses {
		answer := ""
		if r.Value != nil {
			answer = *r.Value
		}
		payload.Responses = append(payload.Responses, models.SubmissionEventResponse{
			QuestionID:   r.FieldID,
			Question:     r.FieldLabel,
			Answer:       answer,
			FieldType:    r.FieldType,
			FieldOptions: r.FieldOptions,
		})
	}
	return payload
}
