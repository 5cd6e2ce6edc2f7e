package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/formflowhq/formflow/internal/models"
)

type InvitationRepo struct {
	db *sql.DB
}

func NewInvitationRepo(db *sql.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

const invitationColumns = `id, user_id, email, description, token, max_uses,
	current_uses, expires_at, is_active, used_at, created_at`

func (r *InvitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inv.ID, inv.UserID, nullStr(inv.Email), nullStr(inv.Description), inv.Token,
		inv.MaxUses, inv.CurrentUses, inv.ExpiresAt, inv.IsActive, inv.UsedAt, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepo) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *InvitationRepo) FindAllByUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invs []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

func (r *InvitationRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate invitation: %w", err)
	}
	return nil
}

// MarkUsed bumps the use counter and stamps first use.
func (r *InvitationRepo) MarkUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET current_uses = current_uses + 1, used_at = COALESCE(used_at, now())
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark invitation used: %w", err)
	}
	return nil
}

func scanInvitation(s rowScanner) (*models.Invitation, error) {
	var inv models.Invitation
	var email, description sql.NullString
	err := s.Scan(&inv.ID, &inv.UserID, &email, &description, &inv.Token, &inv.MaxUses,
		&inv.CurrentUses, &inv.ExpiresAt, &inv.IsActive, &inv.UsedAt, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	inv.Email = strOrEmpty(email)
	inv.Description = strOrEmpty(description)
	return &inv, nil
}
