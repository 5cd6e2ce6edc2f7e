package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/formflowhq/formflow/internal/models"
)

// In-memory stand-ins for the SQL repositories, shared by the service
// tests. One fake per store interface.

type memForms struct {
	mu     sync.Mutex
	forms  map[string]*models.Form
	fields map[string][]models.FormField
}

func newMemForms() *memForms {
	return &memForms{
		forms:  make(map[string]*models.Form),
		fields: make(map[string][]models.FormField),
	}
}

func (m *memForms) Create(ctx context.Context, form *models.Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *form
	m.forms[form.ID] = &cp
	return nil
}

func (m *memForms) FindByID(ctx context.Context, id string) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.forms[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *memForms) FindPublishedBySlug(ctx context.Context, slug string) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.forms {
		if f.Slug == slug && f.IsPublished {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memForms) FindAllByUser(ctx context.Context, userID string, folderID *string, rootOnly bool) ([]models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Form
	for _, f := range m.forms {
		if f.UserID != userID {
			continue
		}
		if folderID != nil && (f.FolderID == nil || *f.FolderID != *folderID) {
			continue
		}
		if rootOnly && f.FolderID != nil {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memForms) Update(ctx context.Context, form *models.Form) error {
	return m.Create(ctx, form)
}

func (m *memForms) UpdateIntegration(ctx context.Context, formID string, settings *models.IntegrationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.forms[formID]; ok {
		f.Integration = settings
	}
	return nil
}

func (m *memForms) MoveToFolder(ctx context.Context, formID string, folderID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.forms[formID]; ok {
		f.FolderID = folderID
	}
	return nil
}

func (m *memForms) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.forms, id)
	delete(m.fields, id)
	return nil
}

func (m *memForms) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.forms {
		if f.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memForms) ListByForm(ctx context.Context, formID string) ([]models.FormField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.FormField(nil), m.fields[formID]...), nil
}

func (m *memForms) ReplaceAll(ctx context.Context, formID string, fields []models.FormField) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[formID] = append([]models.FormField(nil), fields...)
	return nil
}

type memSubs struct {
	mu        sync.Mutex
	forms     *memForms
	subs      map[string]*models.Submission
	responses map[string][]models.FieldResponse
	order     []string
}

func newMemSubs(forms *memForms) *memSubs {
	return &memSubs{
		forms:     forms,
		subs:      make(map[string]*models.Submission),
		responses: make(map[string][]models.FieldResponse),
	}
}

func (m *memSubs) CreateWithResponses(ctx context.Context, sub *models.Submission, responses []models.FieldResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	m.responses[sub.ID] = append([]models.FieldResponse(nil), responses...)
	m.order = append(m.order, sub.ID)
	return nil
}

func (m *memSubs) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memSubs) FindByFormID(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.byFormNewestFirstLocked(formID)
	total := len(all)
	if skip >= total {
		return nil, total, nil
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memSubs) Search(ctx context.Context, formID, query string, limit int) ([]models.Submission, error) {
	subs, _, err := m.FindByFormID(ctx, formID, 0, limit)
	return subs, err
}

func (m *memSubs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
	delete(m.responses, id)
	return nil
}

func (m *memSubs) CountByFormID(ctx context.Context, formID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byFormNewestFirstLocked(formID)), nil
}

func (m *memSubs) ListResponses(ctx context.Context, submissionID string) ([]models.ResponseWithField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[submissionID]
	if !ok {
		return nil, nil
	}
	return m.joinLocked(sub), nil
}

func (m *memSubs) ListResponsesByForm(ctx context.Context, formID string) ([]models.ResponseWithField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ResponseWithField
	for i := len(m.order) - 1; i >= 0; i-- {
		sub, ok := m.subs[m.order[i]]
		if !ok || sub.FormID != formID {
			continue
		}
		out = append(out, m.joinLocked(sub)...)
	}
	return out, nil
}

func (m *memSubs) byFormNewestFirstLocked(formID string) []models.Submission {
	var out []models.Submission
	for i := len(m.order) - 1; i >= 0; i-- {
		if s, ok := m.subs[m.order[i]]; ok && s.FormID == formID {
			out = append(out, *s)
		}
	}
	return out
}

func (m *memSubs) joinLocked(sub *models.Submission) []models.ResponseWithField {
	fields, _ := m.forms.ListByForm(context.Background(), sub.FormID)
	byID := make(map[string]models.FormField)
	for _, f := range fields {
		byID[f.ID] = f
	}
	var out []models.ResponseWithField
	for _, r := range m.responses[sub.ID] {
		f := byID[r.FieldID]
		out = append(out, models.ResponseWithField{
			FieldResponse: r,
			FieldLabel:    f.Label,
			FieldType:     f.Type,
			FieldOptions:  f.Options,
			OrderIndex:    f.OrderIndex,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

type memFolders struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
}

func newMemFolders() *memFolders {
	return &memFolders{folders: make(map[string]*models.Folder)}
}

func (m *memFolders) Create(ctx context.Context, folder *models.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *folder
	m.folders[folder.ID] = &cp
	return nil
}

func (m *memFolders) FindByID(ctx context.Context, id string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.folders[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *memFolders) FindAllByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Folder
	for _, f := range m.folders {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memFolders) Rename(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.folders[id]; ok {
		f.Name = name
	}
	return nil
}

func (m *memFolders) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.folders, id)
	return nil
}

func (m *memFolders) CountByUser(ctx context.Context, userID string) (int, error) {
	folders, _ := m.FindAllByUser(ctx, userID)
	return len(folders), nil
}

type memInvites struct {
	mu      sync.Mutex
	invites map[string]*models.Invitation
}

func newMemInvites() *memInvites {
	return &memInvites{invites: make(map[string]*models.Invitation)}
}

func (m *memInvites) Create(ctx context.Context, inv *models.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invites[inv.ID] = &cp
	return nil
}

func (m *memInvites) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invites {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memInvites) FindAllByUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Invitation
	for _, inv := range m.invites {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memInvites) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invites[id]; ok {
		inv.IsActive = false
	}
	return nil
}

func (m *memInvites) MarkUsed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invites[id]; ok {
		inv.CurrentUses++
		if inv.UsedAt == nil {
			now := time.Now()
			inv.UsedAt = &now
		}
	}
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*models.User)}
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}
