package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
	"swingtrack/internal/services"
)

// AdminHandler handles administrative requests. All routes are gated by
// the admin middleware.
type AdminHandler struct {
	authService services.AuthServicer
	userService services.UserServicer
	sessions    services.SessionServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService services.AuthServicer, userService services.UserServicer, sessions services.SessionServicer) *AdminHandler {
	return &AdminHandler{authService: authService, userService: userService, sessions: sessions}
}

// CreateInviteRequest represents the request payload for issuing an invite.
type CreateInviteRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"omitempty,max=100"`
	TTLMinutes int    `json:"ttl_minutes" binding:"omitempty,gt=0,lte=10080"`
}

// SetUserStatusRequest represents the request payload for suspending or
// reactivating an account.
type SetUserStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,user_status"`
}

// CreateInvite issues a single-use invite and emails its link.
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invite, delivery, err := h.authService.IssueInvite(adminID, req.Email, req.Name, req.TTLMinutes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invite": invite, "delivery": delivery})
}

// ListInvites returns all invites, newest first.
func (h *AdminHandler) ListInvites(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.authService.ListInvites(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUsers returns all accounts, newest first.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.userService.List(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetUserStatus suspends or reactivates an account. Suspension takes
// effect on the user's next request since sessions are checked against
// the store every time.
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.userService.SetStatus(userID, req.Status); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RevokeUserSessions force-logs-out every device of the given account.
func (h *AdminHandler) RevokeUserSessions(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Verify the account exists so a typo'd ID is reported rather than
	// silently revoking nothing.
	if _, err := h.userService.GetByID(userID); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.sessions.RevokeAll(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All sessions revoked"})
}

// ListUserSessions returns the session history for an account.
func (h *AdminHandler) ListUserSessions(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.sessions.ListForUser(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
