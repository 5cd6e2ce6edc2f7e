package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflowhq/formflow/internal/auth"
)

const testSecret = "test-secret"

func newAuthFixture() (*AuthService, *memUsers, *InviteService) {
	users := newMemUsers()
	invites := NewInviteService(newMemInvites())
	return NewAuthService(users, invites, testSecret), users, invites
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, "ana@example.com", "s3cret", "Ana", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user", result.User.Role)

	claims, err := auth.ValidateToken(testSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	_, err = svc.Register(ctx, "ana@example.com", "other", "Ana 2", "")
	assert.Error(t, err, "duplicate email is rejected")

	login, err := svc.Login(ctx, "ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.Error(t, err)
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	assert.Error(t, err)
}

func TestRegisterWithInviteToken(t *testing.T) {
	svc, _, invites := newAuthFixture()
	ctx := context.Background()

	inv, err := invites.Create(ctx, "admin-1", "", "", 1, 7)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bia@example.com", "pw", "Bia", inv.Token)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "caio@example.com", "pw", "Caio", inv.Token)
	assert.ErrorIs(t, err, ErrInviteUnusable, "single-use invite cannot be reused")

	_, err = svc.Register(ctx, "dani@example.com", "pw", "Dani", "bogus")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "admin@example.com", "adminpw"))
	first, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "admin", first.Role)

	require.NoError(t, svc.SeedAdmin(ctx, "admin@example.com", "different"))
	second, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
