package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"swingtrack/internal/broker"
	apperrors "swingtrack/internal/errors"
)

// BrokerHandler exposes the stubbed brokerage integration.
type BrokerHandler struct {
	client *broker.Client
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(client *broker.Client) *BrokerHandler {
	return &BrokerHandler{client: client}
}

// PlaceOrderRequest represents the request payload for a (mock) order.
type PlaceOrderRequest struct {
	Symbol    string           `json:"symbol" binding:"required,min=1,max=20"`
	Qty       int              `json:"qty" binding:"required,gt=0"`
	Side      string           `json:"side" binding:"required,order_side"`
	Price     *decimal.Decimal `json:"price"`
	OrderType string           `json:"order_type" binding:"omitempty,oneof=MARKET LIMIT"`
}

// Status reports whether broker credentials are configured.
func (h *BrokerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": h.client.IsConfigured()})
}

// PlaceOrder forwards an order to the broker stub. The response is
// always a mocked fill.
func (h *BrokerHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	result := h.client.PlaceOrder(symbol, req.Qty, req.Side, req.Price, req.OrderType)
	c.JSON(http.StatusOK, gin.H{"order": result})
}
