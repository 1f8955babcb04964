// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validMarkets are the markets the journal supports.
var validMarkets = map[string]bool{
	"IN": true, "US": true, "AU": true,
}

// validReviewTags are the post-closure review labels.
var validReviewTags = map[string]bool{
	"Good trade":        true,
	"Bad trade":         true,
	"Emotional exit":    true,
	"Emotional buy":     true,
	"Could have waited": true,
	"Perfect execution": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("market", validateMarket)
		_ = v.RegisterValidation("review_tag", validateReviewTag)
		_ = v.RegisterValidation("trade_status", validateTradeStatus)
		_ = v.RegisterValidation("user_status", validateUserStatus)
		_ = v.RegisterValidation("order_side", validateOrderSide)
	}
}

func validateMarket(fl validator.FieldLevel) bool {
	return validMarkets[fl.Field().String()]
}

func validateReviewTag(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || validReviewTags[s]
}

func validateTradeStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "open", "closed":
		return true
	}
	return false
}

func validateUserStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "suspended":
		return true
	}
	return false
}

func validateOrderSide(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "BUY", "SELL":
		return true
	}
	return false
}
