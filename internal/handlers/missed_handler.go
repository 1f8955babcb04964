package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/pagination"
	"swingtrack/internal/services"
)

// MissedHandler handles missed-opportunity log requests.
type MissedHandler struct {
	missedService services.MissedServicer
}

// NewMissedHandler creates a new MissedHandler.
func NewMissedHandler(missedService services.MissedServicer) *MissedHandler {
	return &MissedHandler{missedService: missedService}
}

// CreateMissedRequest represents the request payload for logging a skipped setup.
type CreateMissedRequest struct {
	Symbol       string           `json:"symbol" binding:"required,min=1,max=20"`
	Sector       string           `json:"sector" binding:"max=100"`
	SetupTag     string           `json:"setup_tag" binding:"max=100"`
	TriggerPrice *decimal.Decimal `json:"trigger_price"`
	HighAfter    *decimal.Decimal `json:"high_after"`
	MovePct      *decimal.Decimal `json:"move_pct"`
	ReasonMissed string           `json:"reason_missed" binding:"max=500"`
	Lesson       string           `json:"lesson" binding:"max=500"`
}

// ResolveMissedRequest represents the request payload for resolving an entry.
type ResolveMissedRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

// CreateMissed logs a setup the user skipped.
func (h *MissedHandler) CreateMissed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMissedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	missed, err := h.missedService.Add(userID, services.MissedInput{
		Symbol:       req.Symbol,
		Sector:       req.Sector,
		SetupTag:     req.SetupTag,
		TriggerPrice: req.TriggerPrice,
		HighAfter:    req.HighAfter,
		MovePct:      req.MovePct,
		ReasonMissed: req.ReasonMissed,
		Lesson:       req.Lesson,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"missed": missed})
}

// ListMissed returns the user's missed-opportunity entries. Pass
// active=true to restrict to unresolved ones.
func (h *MissedHandler) ListMissed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	activeOnly := c.Query("active") == "true"
	result, err := h.missedService.List(userID, activeOnly, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResolveMissed marks an entry resolved or reopens it.
func (h *MissedHandler) ResolveMissed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	missedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ResolveMissedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	missed, err := h.missedService.Resolve(userID, missedID, *req.Resolved)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"missed": missed})
}
