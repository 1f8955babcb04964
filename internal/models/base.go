package models

import "time"

// Base contains common columns for all tables. Rows in this schema are
// never soft-deleted: invites are consumed, sessions are revoked, and
// trades are closed, all via status columns.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
