// Package errors provides custom error types for the SwingTrack API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors. All token and invite rejections
// are non-fatal: the caller can always request a fresh link.
var (
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrSessionInvalid = &AppError{Code: "SESSION_INVALID", Message: "Session is invalid, revoked, or expired", StatusCode: http.StatusUnauthorized}
	ErrForbidden      = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAdminOnly      = &AppError{Code: "ADMIN_ONLY", Message: "Administrator access required", StatusCode: http.StatusForbidden}
)

// Magic-link token errors.
var (
	ErrBadSignature = &AppError{Code: "BAD_SIGNATURE", Message: "Link signature does not match", StatusCode: http.StatusUnauthorized}
	ErrTokenExpired = &AppError{Code: "TOKEN_EXPIRED", Message: "Link has expired, request a new one", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken = &AppError{Code: "INVALID_TOKEN", Message: "Link is malformed or invalid", StatusCode: http.StatusUnauthorized}
)

// Invite errors.
var (
	ErrInviteNotFound = &AppError{Code: "INVITE_NOT_FOUND", Message: "Invite not found", StatusCode: http.StatusUnauthorized}
	ErrInviteUsed     = &AppError{Code: "INVITE_USED", Message: "Invite has already been used", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrRateLimited    = &AppError{Code: "RATE_LIMITED", Message: "Too many requests, try again shortly", StatusCode: http.StatusTooManyRequests}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound  = &AppError{Code: "USER_NOT_FOUND", Message: "No account found for this email", StatusCode: http.StatusNotFound}
	ErrUserSuspended = &AppError{Code: "USER_SUSPENDED", Message: "Account suspended, contact the administrator", StatusCode: http.StatusForbidden}
)

// Trade errors. TRADE_NOT_FOUND is returned both when a trade does not
// exist and when it belongs to another user, so record existence is
// never leaked across accounts.
var (
	ErrTradeNotFound      = &AppError{Code: "TRADE_NOT_FOUND", Message: "Trade not found", StatusCode: http.StatusNotFound}
	ErrTradeAlreadyClosed = &AppError{Code: "TRADE_ALREADY_CLOSED", Message: "Trade has already been closed", StatusCode: http.StatusConflict}
)

// Missed-opportunity errors.
var (
	ErrMissedNotFound = &AppError{Code: "MISSED_NOT_FOUND", Message: "Missed-opportunity entry not found", StatusCode: http.StatusNotFound}
)
