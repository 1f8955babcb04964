package models

import "github.com/shopspring/decimal"

// MissedOpportunity records a setup the user saw and skipped, together
// with what happened afterwards and the lesson drawn. Entries are only
// ever mutated by toggling the resolved flag.
type MissedOpportunity struct {
	Base
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	Symbol   string `gorm:"not null" json:"symbol"`
	Sector   string `json:"sector,omitempty"`
	SetupTag string `json:"setup_tag,omitempty"`

	TriggerPrice *decimal.Decimal `gorm:"type:decimal(18,4)" json:"trigger_price,omitempty"`
	HighAfter    *decimal.Decimal `gorm:"type:decimal(18,4)" json:"high_after,omitempty"`
	MovePct      *decimal.Decimal `gorm:"type:decimal(8,4)" json:"move_pct,omitempty"`

	ReasonMissed string `json:"reason_missed,omitempty"`
	Lesson       string `json:"lesson,omitempty"`
	Resolved     bool   `gorm:"default:false" json:"resolved"`
}
