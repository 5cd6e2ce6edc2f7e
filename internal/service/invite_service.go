package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formflowhq/formflow/internal/models"
)

var (
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteUnusable = errors.New("invitation is no longer valid")
)

type InviteStore interface {
	Create(ctx context.Context, inv *models.Invitation) error
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.Invitation, error)
	Deactivate(ctx context.Context, id string) error
	MarkUsed(ctx context.Context, id string) error
}

type InviteService struct {
	invites InviteStore
}

func NewInviteService(invites InviteStore) *InviteService {
	return &InviteService{invites: invites}
}

// InvitationView pairs the row with its derived status so the dashboard
// does not re-derive it client-side.
type InvitationView struct {
	models.Invitation
	Status string `json:"status"`
}

func (s *InviteService) List(ctx context.Context, userID string) ([]InvitationView, error) {
	invs, err := s.invites.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]InvitationView, 0, len(invs))
	for _, inv := range invs {
		views = append(views, InvitationView{Invitation: inv, Status: inv.Status(now)})
	}
	return views, nil
}

func (s *InviteService) Create(ctx context.Context, userID, email, description string, maxUses, expiresInDays int) (*models.Invitation, error) {
	if maxUses < 1 {
		maxUses = 1
	}
	if expiresInDays < 1 {
		expiresInDays = 7
	}
	now := time.Now().UTC()
	inv := &models.Invitation{
		ID:          uuid.NewString(),
		UserID:      userID,
		Email:       email,
		Description: description,
		Token:       newInviteToken(),
		MaxUses:     maxUses,
		ExpiresAt:   now.Add(time.Duration(expiresInDays) * 24 * time.Hour),
		IsActive:    true,
		CreatedAt:   now,
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InviteService) Deactivate(ctx context.Context, userID, id string) error {
	invs, err := s.invites.FindAllByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, inv := range invs {
		if inv.ID == id {
			return s.invites.Deactivate(ctx, id)
		}
	}
	return ErrInviteNotFound
}

// Redeem validates a signup token and records its use.
func (s *InviteService) Redeem(ctx context.Context, token string) error {
	inv, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrInviteNotFound
	}
	switch inv.Status(time.Now()) {
	case models.InviteActive, models.InviteUsed:
		return s.invites.MarkUsed(ctx, inv.ID)
	}
	return ErrInviteUnusable
}

func newInviteToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
