package services

import (
	"github.com/shopspring/decimal"

	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
	"swingtrack/internal/risk"
)

// SettingsUpdate enumerates the mutable per-user preference fields.
// Nil fields are left untouched.
type SettingsUpdate struct {
	MarketDefault      *string
	CapitalPool        *decimal.Decimal
	MaxRiskPerTradePct *decimal.Decimal
	MaxOpenTrades      *int
	CommissionPct      *decimal.Decimal
}

// UserServicer defines the contract for user and settings business logic.
type UserServicer interface {
	FindByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(email, name string) (*models.User, error)
	FindOrCreate(email, name string) (*models.User, error)
	List(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	SetStatus(userID uint, status models.UserStatus) error
	EnsureOwner(email, name string) error

	GetSettings(userID uint) (*models.UserSettings, error)
	UpdateSettings(userID uint, update SettingsUpdate) (*models.UserSettings, error)
}

// SessionServicer defines the contract for refresh-session management.
type SessionServicer interface {
	Create(user *models.User, userAgent string) (string, error)
	Resolve(refreshToken string) (*models.User, error)
	RevokeAll(userID uint) error
	ListForUser(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Session], error)
}

// AuthResult is returned when a magic link is successfully redeemed.
type AuthResult struct {
	User         *models.User
	RefreshToken string
}

// LinkDelivery reports how a magic link reached (or should reach) its
// target. Link is populated only in mock mode so the caller can render
// it directly; delivered links are never echoed back.
type LinkDelivery struct {
	Delivered bool   `json:"delivered"`
	Mock      bool   `json:"mock"`
	Link      string `json:"link,omitempty"`
}

// AuthServicer orchestrates invite issuance/acceptance and magic-link
// login.
type AuthServicer interface {
	IssueInvite(adminID uint, email, name string, ttlMinutes int) (*models.Invite, *LinkDelivery, error)
	AcceptInvite(token, name, userAgent string) (*AuthResult, error)
	RequestLoginLink(email string) (*LinkDelivery, error)
	CompleteLogin(token, userAgent string) (*AuthResult, error)
	ListInvites(page pagination.PageRequest) (*pagination.PageResponse[models.Invite], error)
	SweepExpiredInvites() (int64, error)
}

// TradeInput carries the buy-side fields for a new trade.
type TradeInput struct {
	Symbol   string
	Market   string
	Qty      int
	BuyPrice decimal.Decimal
	Capital  *decimal.Decimal
	SL1      *decimal.Decimal
	SL2      *decimal.Decimal
	T1       *decimal.Decimal
	T2       *decimal.Decimal
	Sector   string
	SetupTag string
	Notes    string
}

// TradeUpdate enumerates the buy-side fields that may change while a
// trade is open. Nil fields are left untouched.
type TradeUpdate struct {
	SL1      *decimal.Decimal
	SL2      *decimal.Decimal
	T1       *decimal.Decimal
	T2       *decimal.Decimal
	Capital  *decimal.Decimal
	Sector   *string
	SetupTag *string
	Notes    *string
}

// CloseInput carries the close-side fields for the single closure
// operation.
type CloseInput struct {
	SellPrice     decimal.Decimal
	PostExitMove  string
	ReviewComment string
}

// CapitalSummary reports the user's capital pool utilisation.
type CapitalSummary struct {
	CapitalPool    decimal.Decimal `json:"capital_pool"`
	OpenAllocation decimal.Decimal `json:"open_allocation"`
	Available      decimal.Decimal `json:"available"`
}

// TradeServicer defines the contract for trade journaling.
type TradeServicer interface {
	Add(userID uint, input TradeInput) (*models.Trade, []risk.Advisory, error)
	List(userID uint, status models.TradeStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
	GetByID(userID, tradeID uint) (*models.Trade, error)
	Update(userID, tradeID uint, update TradeUpdate) (*models.Trade, error)
	Close(userID, tradeID uint, input CloseInput) (*models.Trade, error)
	Lookup(userID uint, query string) ([]models.Trade, error)
	Stats(userID uint) (*risk.Stats, error)
	Capital(userID uint) (*CapitalSummary, error)
}

// MissedInput carries the fields for a new missed-opportunity entry.
type MissedInput struct {
	Symbol       string
	Sector       string
	SetupTag     string
	TriggerPrice *decimal.Decimal
	HighAfter    *decimal.Decimal
	MovePct      *decimal.Decimal
	ReasonMissed string
	Lesson       string
}

// MissedServicer defines the contract for the missed-opportunity log.
type MissedServicer interface {
	Add(userID uint, input MissedInput) (*models.MissedOpportunity, error)
	List(userID uint, activeOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.MissedOpportunity], error)
	Resolve(userID, missedID uint, resolved bool) (*models.MissedOpportunity, error)
}
