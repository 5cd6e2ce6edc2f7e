package models

import "time"

// Webhook payloads are point-in-time projections shaped for the external
// automation service. Key casing follows the schema that service expects:
// snake_case for form events, camelCase for submission events.

type FormEventPayload struct {
	Action    string           `json:"action"` // create | update
	Timestamp time.Time        `json:"timestamp"`
	Form      FormEventForm    `json:"form"`
	Fields    []FormEventField `json:"fields"`
}

type FormEventForm struct {
	ID                       string    `json:"id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	Slug                     string    `json:"slug"`
	ThemeColor               string    `json:"theme_color"`
	IsPublished              bool      `json:"is_published"`
	AllowMultipleSubmissions bool      `json:"allow_multiple_submissions"`
	SuccessMessage           string    `json:"success_message"`
	SubmitButtonText         string    `json:"submit_button_text"`
	WelcomeMessage           string    `json:"welcome_message"`
	WelcomeButtonText        string    `json:"welcome_button_text"`
	ShowWelcomeScreen        bool      `json:"show_welcome_screen"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

type FormEventField struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder"`
	IsRequired  bool     `json:"is_required"`
	Options     []string `json:"options"`
	OrderIndex  int      `json:"order_index"`
}

type SubmissionEventPayload struct {
	SpreadsheetID    *string                   `json:"spreadsheetId"`
	FormID           string                    `json:"formId"`
	FormTitle        string                    `json:"formTitle"`
	SubmissionID     string                    `json:"submissionId"`
	SubmittedAt      time.Time                 `json:"submittedAt"`
	SubmittedByEmail string                    `json:"submittedByEmail,omitempty"`
	Responses        []SubmissionEventResponse `json:"responses"`
	Timestamp        time.Time                 `json:"timestamp"`
}

type SubmissionEventResponse struct {
	QuestionID   string   `json:"questionId"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	FieldType    string   `json:"fieldType"`
	FieldOptions []string `json:"fieldOptions,omitempty"`
}
