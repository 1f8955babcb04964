package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/services"
)

// SettingsHandler handles per-user preference requests.
type SettingsHandler struct {
	userService services.UserServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(userService services.UserServicer) *SettingsHandler {
	return &SettingsHandler{userService: userService}
}

// UpdateSettingsRequest represents the request payload for updating settings.
// Omitted fields are left untouched.
type UpdateSettingsRequest struct {
	MarketDefault      *string          `json:"market_default" binding:"omitempty,market"`
	CapitalPool        *decimal.Decimal `json:"capital_pool"`
	MaxRiskPerTradePct *decimal.Decimal `json:"max_risk_per_trade_pct"`
	MaxOpenTrades      *int             `json:"max_open_trades"`
	CommissionPct      *decimal.Decimal `json:"commission_pct"`
}

// GetSettings returns the authenticated user's settings.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.userService.GetSettings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings applies a partial update to the user's settings.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.userService.UpdateSettings(userID, services.SettingsUpdate{
		MarketDefault:      req.MarketDefault,
		CapitalPool:        req.CapitalPool,
		MaxRiskPerTradePct: req.MaxRiskPerTradePct,
		MaxOpenTrades:      req.MaxOpenTrades,
		CommissionPct:      req.CommissionPct,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
