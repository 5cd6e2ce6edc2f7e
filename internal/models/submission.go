package models

import "time"

// Submission is one completed response instance to a form. SubmissionData
// carries the full answer map keyed by field ID, a write-time convenience
// duplicate of the per-field response rows.
type Submission struct {
	ID               string         `json:"id"`
	FormID           string         `json:"formId"`
	SubmissionData   map[string]any `json:"submissionData"`
	SubmittedAt      time.Time      `json:"submittedAt"`
	SubmittedByEmail string         `json:"submittedByEmail,omitempty"`
	UserAgent        string         `json:"userAgent,omitempty"`
}

// FieldResponse is one answer to one field within a submission.
// Multi-select values are joined with ", ".
type FieldResponse struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submissionId"`
	FieldID      string    `json:"fieldId"`
	Value        *string   `json:"value"`
	FileURL      *string   `json:"fileUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ResponseWithField is a field response joined with the field it answers,
// as consumed by the submission webhook and the export/analytics paths.
type ResponseWithField struct {
	FieldResponse
	FieldLabel   string   `json:"fieldLabel"`
	FieldType    string   `json:"fieldType"`
	FieldOptions []string `json:"fieldOptions,omitempty"`
	OrderIndex   int      `json:"orderIndex"`
}
