package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formflowhq/formflow/internal/models"
)

var ErrFormNotFound = errors.New("form not found")

// FormStore and FieldStore are the persistence surfaces the service needs;
// the SQL repositories satisfy them, in-memory fakes stand in for tests.
type FormStore interface {
	Create(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id string) (*models.Form, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Form, error)
	FindAllByUser(ctx context.Context, userID string, folderID *string, rootOnly bool) ([]models.Form, error)
	Update(ctx context.Context, form *models.Form) error
	MoveToFolder(ctx context.Context, formID string, folderID *string) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type FieldStore interface {
	ListByForm(ctx context.Context, formID string) ([]models.FormField, error)
	ReplaceAll(ctx context.Context, formID string, fields []models.FormField) error
}

type FormService struct {
	forms  FormStore
	fields FieldStore
}

func NewFormService(forms FormStore, fields FieldStore) *FormService {
	return &FormService{forms: forms, fields: fields}
}

// FormInput is the builder's save payload: the whole form, fields included.
type FormInput struct {
	Title                    string       `json:"title"`
	Description              string       `json:"description"`
	FolderID                 *string      `json:"folderId"`
	IsPublished              bool         `json:"isPublished"`
	AllowMultipleSubmissions bool         `json:"allowMultipleSubmissions"`
	ShowProgressBar          bool         `json:"showProgressBar"`
	RequireLogin             bool         `json:"requireLogin"`
	SuccessMessage           string       `json:"successMessage"`
	SubmitButtonText         string       `json:"submitButtonText"`
	ThemeColor               string       `json:"themeColor"`
	ShowWelcomeScreen        bool         `json:"showWelcomeScreen"`
	WelcomeMessage           string       `json:"welcomeMessage"`
	WelcomeButtonText        string       `json:"welcomeButtonText"`
	CallbackURL              *string      `json:"callbackUrl"`
	Fields                   []FieldInput `json:"fields"`
}

type FieldInput struct {
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Placeholder string   `json:"placeholder"`
	IsRequired  bool     `json:"isRequired"`
	Options     []string `json:"options"`
}

func (s *FormService) Create(ctx context.Context, userID string, input FormInput) (*models.Form, []models.FormField, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, nil, errors.New("form title is required")
	}

	slug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	form := &models.Form{
		ID:                       uuid.NewString(),
		UserID:                   userID,
		FolderID:                 input.FolderID,
		Title:                    input.Title,
		Description:              input.Description,
		Slug:                     slug,
		IsPublished:              input.IsPublished,
		AllowMultipleSubmissions: input.AllowMultipleSubmissions,
		ShowProgressBar:          input.ShowProgressBar,
		RequireLogin:             input.RequireLogin,
		SuccessMessage:           defaultStr(input.SuccessMessage, "Obrigado pela sua resposta!"),
		SubmitButtonText:         defaultStr(input.SubmitButtonText, "Enviar"),
		ThemeColor:               defaultStr(input.ThemeColor, "#6366f1"),
		ShowWelcomeScreen:        input.ShowWelcomeScreen,
		WelcomeMessage:           input.WelcomeMessage,
		WelcomeButtonText:        input.WelcomeButtonText,
		CallbackURL:              input.CallbackURL,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, nil, err
	}
	fields := buildFields(form.ID, input.Fields, now)
	if err := s.fields.ReplaceAll(ctx, form.ID, fields); err != nil {
		return nil, nil, err
	}
	return form, fields, nil
}

func (s *FormService) Get(ctx context.Context, userID, id string) (*models.Form, []models.FormField, error) {
	form, err := s.ownedForm(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	fields, err := s.fields.ListByForm(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return form, fields, nil
}

func (s *FormService) List(ctx context.Context, userID string, folderID *string, rootOnly bool) ([]models.Form, error) {
	return s.forms.FindAllByUser(ctx, userID, folderID, rootOnly)
}

func (s *FormService) Update(ctx context.Context, userID, id string, input FormInput) (*models.Form, []models.FormField, error) {
	form, err := s.ownedForm(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(input.Title) != "" {
		form.Title = input.Title
	}
	form.Description = input.Description
	form.FolderID = input.FolderID
	form.IsPublished = input.IsPublished
	form.AllowMultipleSubmissions = input.AllowMultipleSubmissions
	form.ShowProgressBar = input.ShowProgressBar
	form.RequireLogin = input.RequireLogin
	form.SuccessMessage = defaultStr(input.SuccessMessage, form.SuccessMessage)
	form.SubmitButtonText = defaultStr(input.SubmitButtonText, form.SubmitButtonText)
	form.ThemeColor = defaultStr(input.ThemeColor, form.ThemeColor)
	form.ShowWelcomeScreen = input.ShowWelcomeScreen
	form.WelcomeMessage = input.WelcomeMessage
	form.WelcomeButtonText = input.WelcomeButtonText
	form.CallbackURL = input.CallbackURL
	form.UpdatedAt = time.Now().UTC()

	if err := s.forms.Update(ctx, form); err != nil {
		return nil, nil, err
	}
	fields := buildFields(form.ID, input.Fields, form.UpdatedAt)
	if err := s.fields.ReplaceAll(ctx, form.ID, fields); err != nil {
		return nil, nil, err
	}
	return form, fields, nil
}

// SetPublished flips visibility of the public URL.
func (s *FormService) SetPublished(ctx context.Context, userID, id string, published bool) (*models.Form, error) {
	form, err := s.ownedForm(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	form.IsPublished = published
	form.UpdatedAt = time.Now().UTC()
	if err := s.forms.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Move reassigns the form's folder; nil moves it to the root.
func (s *FormService) Move(ctx context.Context, userID, id string, folderID *string) error {
	if _, err := s.ownedForm(ctx, userID, id); err != nil {
		return err
	}
	return s.forms.MoveToFolder(ctx, id, folderID)
}

// Duplicate copies a form and its fields into a new unpublished draft.
func (s *FormService) Duplicate(ctx context.Context, userID, id string) (*models.Form, []models.FormField, error) {
	src, err := s.ownedForm(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	srcFields, err := s.fields.ListByForm(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	input := FormInput{
		Title:                    src.Title + " (copy)",
		Description:              src.Description,
		FolderID:                 src.FolderID,
		AllowMultipleSubmissions: src.AllowMultipleSubmissions,
		ShowProgressBar:          src.ShowProgressBar,
		RequireLogin:             src.RequireLogin,
		SuccessMessage:           src.SuccessMessage,
		SubmitButtonText:         src.SubmitButtonText,
		ThemeColor:               src.ThemeColor,
		ShowWelcomeScreen:        src.ShowWelcomeScreen,
		WelcomeMessage:           src.WelcomeMessage,
		WelcomeButtonText:        src.WelcomeButtonText,
		CallbackURL:              src.CallbackURL,
	}
	for _, f := range srcFields {
		input.Fields = append(input.Fields, FieldInput{
			Type:        f.Type,
			Label:       f.Label,
			Description: f.Description,
			Placeholder: f.Placeholder,
			IsRequired:  f.IsRequired,
			Options:     f.Options,
		})
	}
	return s.Create(ctx, userID, input)
}

func (s *FormService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedForm(ctx, userID, id); err != nil {
		return err
	}
	return s.forms.Delete(ctx, id)
}

// GetPublished resolves the public form URL: only published forms and their
// ordered fields.
func (s *FormService) GetPublished(ctx context.Context, slug string) (*models.Form, []models.FormField, error) {
	form, err := s.forms.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if form == nil {
		return nil, nil, ErrFormNotFound
	}
	fields, err := s.fields.ListByForm(ctx, form.ID)
	if err != nil {
		return nil, nil, err
	}
	return form, fields, nil
}

func (s *FormService) ownedForm(ctx context.Context, userID, id string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil || form.UserID != userID {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// uniqueSlug derives a URL-safe slug from the title, probing for collisions
// and appending a numeric suffix until free.
func (s *FormService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := generateSlug(title)
	slug := base
	for i := 2; ; i++ {
		taken, err := s.forms.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

func generateSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonAlphaNum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "form"
	}
	return slug
}

func buildFields(formID string, inputs []FieldInput, now time.Time) []models.FormField {
	fields := make([]models.FormField, 0, len(inputs))
	for i, in := range inputs {
		fields = append(fields, models.FormField{
			ID:          uuid.NewString(),
			FormID:      formID,
			Type:        in.Type,
			Label:       in.Label,
			Description: in.Description,
			Placeholder: in.Placeholder,
			IsRequired:  in.IsRequired,
			Options:     in.Options,
			OrderIndex:  i,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return fields
}

func defaultStr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
