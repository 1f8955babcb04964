// Package broker is a capability-gated stub for a real brokerage
// integration. Order placement always returns a mocked success; wiring
// an actual broker API behind this interface is deliberately left out.
package broker

import (
	"github.com/shopspring/decimal"

	"swingtrack/internal/config"
)

// OrderResult is the outcome of a (mock) order placement.
type OrderResult struct {
	OK        bool   `json:"ok"`
	Mock      bool   `json:"mock"`
	Symbol    string `json:"symbol"`
	Qty       int    `json:"qty"`
	Side      string `json:"side"`
	OrderType string `json:"order_type"`
}

// Client talks to the (stubbed) broker API.
type Client struct {
	apiKey      string
	apiSecret   string
	accessToken string
}

// NewClient creates a broker client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:      cfg.BrokerAPIKey,
		apiSecret:   cfg.BrokerAPISecret,
		accessToken: cfg.BrokerAccessToken,
	}
}

// IsConfigured reports whether all broker credentials are present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != "" && c.apiSecret != "" && c.accessToken != ""
}

// PlaceOrder pretends to place an order. price is ignored for MARKET
// orders and may be nil.
func (c *Client) PlaceOrder(symbol string, qty int, side string, price *decimal.Decimal, orderType string) OrderResult {
	if orderType == "" {
		orderType = "MARKET"
	}
	_ = price
	return OrderResult{
		OK:        true,
		Mock:      true,
		Symbol:    symbol,
		Qty:       qty,
		Side:      side,
		OrderType: orderType,
	}
}
