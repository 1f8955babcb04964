package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus represents the lifecycle status of a trade.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "open"
	TradeStatusClosed TradeStatus = "closed"
)

// Trade is a journaled swing trade. A trade transitions open -> closed
// exactly once; after closure the buy-side columns stay immutable and
// only the close-side columns (sell price, P&L, fees, hold days, review)
// are populated.
type Trade struct {
	Base
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Symbol string `gorm:"index;not null" json:"symbol"`
	Market string `gorm:"default:'IN'" json:"market"`

	Sector   string `json:"sector,omitempty"`
	SetupTag string `json:"setup_tag,omitempty"`
	Notes    string `json:"notes,omitempty"`

	Qty      int              `gorm:"not null" json:"qty"`
	BuyPrice decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"buy_price"`
	Capital  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"capital,omitempty"`

	// Stop-loss and target levels. Risk computation prefers SL1 and
	// falls back to SL2.
	SL1 *decimal.Decimal `gorm:"type:decimal(18,4)" json:"sl1,omitempty"`
	SL2 *decimal.Decimal `gorm:"type:decimal(18,4)" json:"sl2,omitempty"`
	T1  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"t1,omitempty"`
	T2  *decimal.Decimal `gorm:"type:decimal(18,4)" json:"t2,omitempty"`

	Status TradeStatus `gorm:"index;default:'open'" json:"status"`

	// Close-side fields, set by the single closure operation.
	SellPrice     *decimal.Decimal `gorm:"type:decimal(18,4)" json:"sell_price,omitempty"`
	SellDate      *time.Time       `json:"sell_date,omitempty"`
	HoldDays      *int             `json:"hold_days,omitempty"`
	FeesAbs       *decimal.Decimal `gorm:"type:decimal(18,4)" json:"fees_abs,omitempty"`
	PnlAbs        *decimal.Decimal `gorm:"type:decimal(18,4)" json:"pnl_abs,omitempty"`
	PnlPct        *decimal.Decimal `gorm:"type:decimal(18,4)" json:"pnl_pct,omitempty"`
	PostExitMove  string           `json:"post_exit_move,omitempty"`
	ReviewComment string           `json:"review_comment,omitempty"`
}

// Open reports whether the trade is still open.
func (t *Trade) Open() bool { return t.Status == TradeStatusOpen }
