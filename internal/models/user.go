package models

import "time"

// UserStatus represents the lifecycle status of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents the user model in the database. There are no
// passwords: users sign in exclusively through magic links and hold a
// long-lived refresh session afterwards.
type User struct {
	Base
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Name          string     `json:"name"`
	Status        UserStatus `gorm:"default:'active'" json:"status"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	IsAdmin       bool       `gorm:"default:false" json:"is_admin"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	Settings *UserSettings        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"settings,omitempty"`
	Sessions []Session            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Trades   []Trade              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Missed   []MissedOpportunity  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
