package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
	"swingtrack/internal/services"
)

// TradeHandler handles trade journaling requests.
type TradeHandler struct {
	tradeService services.TradeServicer
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService services.TradeServicer) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// CreateTradeRequest represents the request payload for logging a buy.
type CreateTradeRequest struct {
	Symbol   string           `json:"symbol" binding:"required,min=1,max=20"`
	Market   string           `json:"market" binding:"omitempty,market"`
	Qty      int              `json:"qty" binding:"required,gt=0"`
	BuyPrice decimal.Decimal  `json:"buy_price" binding:"required"`
	Capital  *decimal.Decimal `json:"capital"`
	SL1      *decimal.Decimal `json:"sl1"`
	SL2      *decimal.Decimal `json:"sl2"`
	T1       *decimal.Decimal `json:"t1"`
	T2       *decimal.Decimal `json:"t2"`
	Sector   string           `json:"sector" binding:"max=100"`
	SetupTag string           `json:"setup_tag" binding:"max=100"`
	Notes    string           `json:"notes" binding:"max=2000"`
}

// UpdateTradeRequest represents the request payload for editing an open trade.
type UpdateTradeRequest struct {
	SL1      *decimal.Decimal `json:"sl1"`
	SL2      *decimal.Decimal `json:"sl2"`
	T1       *decimal.Decimal `json:"t1"`
	T2       *decimal.Decimal `json:"t2"`
	Capital  *decimal.Decimal `json:"capital"`
	Sector   *string          `json:"sector" binding:"omitempty,max=100"`
	SetupTag *string          `json:"setup_tag" binding:"omitempty,max=100"`
	Notes    *string          `json:"notes" binding:"omitempty,max=2000"`
}

// CloseTradeRequest represents the request payload for closing a trade.
type CloseTradeRequest struct {
	SellPrice     decimal.Decimal `json:"sell_price" binding:"required"`
	PostExitMove  string          `json:"post_exit_move" binding:"max=500"`
	ReviewComment string          `json:"review_comment" binding:"omitempty,review_tag"`
}

// CreateTrade logs a new buy and returns the saved trade alongside any
// risk advisories. Advisories never block the save.
func (h *TradeHandler) CreateTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	trade, advisories, err := h.tradeService.Add(userID, services.TradeInput{
		Symbol:   req.Symbol,
		Market:   req.Market,
		Qty:      req.Qty,
		BuyPrice: req.BuyPrice,
		Capital:  req.Capital,
		SL1:      req.SL1,
		SL2:      req.SL2,
		T1:       req.T1,
		T2:       req.T2,
		Sector:   req.Sector,
		SetupTag: req.SetupTag,
		Notes:    req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trade": trade, "advisories": advisories})
}

// ListTrades returns the user's trades filtered by status.
func (h *TradeHandler) ListTrades(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := models.TradeStatus(c.DefaultQuery("status", string(models.TradeStatusOpen)))
	if status != models.TradeStatusOpen && status != models.TradeStatusClosed {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be open or closed"))
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.tradeService.List(userID, status, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTrade returns a single trade owned by the user.
func (h *TradeHandler) GetTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tradeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	trade, err := h.tradeService.GetByID(userID, tradeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// UpdateTrade edits the buy-side fields of an open trade.
func (h *TradeHandler) UpdateTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tradeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	trade, err := h.tradeService.Update(userID, tradeID, services.TradeUpdate{
		SL1:      req.SL1,
		SL2:      req.SL2,
		T1:       req.T1,
		T2:       req.T2,
		Capital:  req.Capital,
		Sector:   req.Sector,
		SetupTag: req.SetupTag,
		Notes:    req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// CloseTrade records the sell side of an open trade and computes its
// financial outcome. A trade closes exactly once.
func (h *TradeHandler) CloseTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tradeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CloseTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	trade, err := h.tradeService.Close(userID, tradeID, services.CloseInput{
		SellPrice:     req.SellPrice,
		PostExitMove:  req.PostExitMove,
		ReviewComment: req.ReviewComment,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// LookupTrades finds trades by ID or symbol fragment.
func (h *TradeHandler) LookupTrades(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "q is required"))
		return
	}

	trades, err := h.tradeService.Lookup(userID, query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// GetStats returns the user's aggregate performance statistics.
func (h *TradeHandler) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.tradeService.Stats(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetCapital returns the user's capital pool utilisation.
func (h *TradeHandler) GetCapital(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.tradeService.Capital(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"capital": summary})
}
