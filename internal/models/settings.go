package models

import "github.com/shopspring/decimal"

// UserSettings holds per-user trading preferences. Exactly one row
// exists per user, created in the same transaction as the user itself.
// Money and percentage columns use decimals so fee and risk arithmetic
// stays exact.
type UserSettings struct {
	Base
	UserID             uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	MarketDefault      string          `gorm:"default:'IN'" json:"market_default"`
	CapitalPool        decimal.Decimal `gorm:"type:decimal(18,4)" json:"capital_pool"`
	MaxRiskPerTradePct decimal.Decimal `gorm:"type:decimal(8,4)" json:"max_risk_per_trade_pct"`
	MaxOpenTrades      int             `gorm:"default:3" json:"max_open_trades"`
	CommissionPct      decimal.Decimal `gorm:"type:decimal(8,4)" json:"commission_pct"`
}

// DefaultSettings returns the settings a freshly created user starts
// with: a 5-lakh capital pool, 1.5% max risk per trade, three concurrent
// open trades, and a 0.03% one-way commission.
func DefaultSettings(userID uint) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		MarketDefault:      "IN",
		CapitalPool:        decimal.NewFromInt(500000),
		MaxRiskPerTradePct: decimal.NewFromFloat(1.5),
		MaxOpenTrades:      3,
		CommissionPct:      decimal.NewFromFloat(0.03),
	}
}
