package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/formflowhq/formflow/internal/auth"
	"github.com/formflowhq/formflow/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type AuthService struct {
	users     UserStore
	invites   *InviteService
	jwtSecret string
}

func NewAuthService(users UserStore, invites *InviteService, jwtSecret string) *AuthService {
	return &AuthService{users: users, invites: invites, jwtSecret: jwtSecret}
}

type AuthResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Register creates an account. When an invite token is supplied it must
// still be redeemable, and its use is recorded.
func (s *AuthService) Register(ctx context.Context, email, password, name, inviteToken string) (*AuthResult, error) {
	existing, _ := s.users.FindByEmail(ctx, email)
	if existing != nil {
		return nil, errors.New("email already registered")
	}
	if inviteToken != "" {
		if err := s.invites.Redeem(ctx, inviteToken); err != nil {
			return nil, err
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         "user",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := auth.GenerateToken(s.jwtSecret, user.ID, email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("invalid credentials")
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, errors.New("invalid credentials")
	}
	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	existing, _ := s.users.FindByEmail(ctx, email)
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Admin",
		Role:         "admin",
		CreatedAt:    time.Now().UTC(),
	}
	return s.users.Create(ctx, user)
}
