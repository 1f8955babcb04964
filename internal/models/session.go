package models

import "time"

// Session is a long-lived refresh session. Sessions are never deleted
// by normal flows: validity is governed entirely by the revoked flag
// and the expiry timestamp, which leaves a simple audit trail.
type Session struct {
	Base
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	RefreshToken string    `gorm:"uniqueIndex;not null" json:"-"`
	Email        string    `json:"email"` // denormalized from users for audit listings
	UserAgent    string    `gorm:"size:200" json:"user_agent"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	Revoked      bool      `gorm:"default:false" json:"revoked"`
}

// Valid reports whether the session can still authenticate requests at
// the given instant.
func (s *Session) Valid(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(now)
}
