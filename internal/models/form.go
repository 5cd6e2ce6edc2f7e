package models

import "time"

// Field types understood by the public form runtime.
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldNumber   = "number"
	FieldTextarea = "textarea"
	FieldSelect   = "select"
	FieldRadio    = "radio"
	FieldCheckbox = "checkbox"
	FieldTel      = "tel"
	FieldURL      = "url"
	FieldDate     = "date"
	FieldFile     = "file"
	FieldName     = "name"
	FieldTerms    = "terms"
)

// Form is a user-authored, publishable questionnaire definition.
type Form struct {
	ID                       string               `json:"id"`
	UserID                   string               `json:"userId"`
	FolderID                 *string              `json:"folderId,omitempty"`
	Title                    string               `json:"title"`
	Description              string               `json:"description,omitempty"`
	Slug                     string               `json:"slug"`
	IsPublished              bool                 `json:"isPublished"`
	AllowMultipleSubmissions bool                 `json:"allowMultipleSubmissions"`
	ShowProgressBar          bool                 `json:"showProgressBar"`
	RequireLogin             bool                 `json:"requireLogin"`
	SuccessMessage           string               `json:"successMessage"`
	SubmitButtonText         string               `json:"submitButtonText"`
	ThemeColor               string               `json:"themeColor"`
	ShowWelcomeScreen        bool                 `json:"showWelcomeScreen"`
	WelcomeMessage           string               `json:"welcomeMessage,omitempty"`
	WelcomeButtonText        string               `json:"welcomeButtonText,omitempty"`
	CallbackURL              *string              `json:"callbackUrl,omitempty"`
	Integration              *IntegrationSettings `json:"integration,omitempty"`
	CreatedAt                time.Time            `json:"createdAt"`
	UpdatedAt                time.Time            `json:"updatedAt"`
}

// HasWelcome reports whether the public runtime should show a welcome
// screen before the first question.
func (f *Form) HasWelcome() bool {
	return f.ShowWelcomeScreen && f.WelcomeMessage != ""
}

// SpreadsheetID returns the linked spreadsheet identifier, or "" when the
// form has no spreadsheet integration.
func (f *Form) SpreadsheetID() string {
	if f.Integration == nil {
		return ""
	}
	return f.Integration.SpreadsheetID
}

// FormField is one question within a form. OrderIndex values, read in
// ascending order, define the exact question sequence.
type FormField struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	Type        string    `json:"type"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	IsRequired  bool      `json:"isRequired"`
	Options     []string  `json:"options,omitempty"`
	OrderIndex  int       `json:"orderIndex"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsChoice reports whether the field's answer comes from its Options list.
func (f *FormField) IsChoice() bool {
	switch f.Type {
	case FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

// IntegrationSettings is the structured spreadsheet-sync state stored on a
// form. It replaces the historical practice of packing a JSON blob into the
// callback URL column.
type IntegrationSettings struct {
	SpreadsheetID  string `json:"spreadsheetId,omitempty"`
	SpreadsheetURL string `json:"spreadsheetUrl,omitempty"`
	SyncStatus     string `json:"syncStatus,omitempty"` // pending | success | error
	SyncError      string `json:"syncError,omitempty"`
}
