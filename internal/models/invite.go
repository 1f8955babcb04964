package models

import "time"

// Invite is an admin-issued, single-use entry ticket. The token column
// stores the full signed magic-link token; acceptance looks the invite
// up by that exact string and flips UsedAt exactly once.
type Invite struct {
	Base
	Email     string     `gorm:"not null" json:"email"`
	Name      string     `json:"name"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	InvitedBy uint       `json:"invited_by"`
}

// Used reports whether the invite has already been consumed.
func (i *Invite) Used() bool { return i.UsedAt != nil }
