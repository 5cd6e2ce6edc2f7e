package models

import "time"

// Invitation statuses derived from the row state, newest condition wins.
const (
	InviteActive    = "active"
	InviteDisabled  = "disabled"
	InviteExpired   = "expired"
	InviteExhausted = "exhausted"
	InviteUsed      = "used"
)

// Invitation is a shareable signup token with usage and expiry limits.
type Invitation struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Email       string     `json:"email,omitempty"`
	Description string     `json:"description,omitempty"`
	Token       string     `json:"token"`
	MaxUses     int        `json:"maxUses"`
	CurrentUses int        `json:"currentUses"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	IsActive    bool       `json:"isActive"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Status classifies the invitation at time now.
func (i *Invitation) Status(now time.Time) string {
	switch {
	case !i.IsActive:
		return InviteDisabled
	case now.After(i.ExpiresAt):
		return InviteExpired
	case i.CurrentUses >= i.MaxUses:
		return InviteExhausted
	case i.UsedAt != nil:
		return InviteUsed
	}
	return InviteActive
}
