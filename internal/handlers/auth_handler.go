package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/services"
)

// AuthHandler handles passwordless authentication requests.
type AuthHandler struct {
	authService services.AuthServicer
	userService services.UserServicer
	sessions    services.SessionServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServicer, userService services.UserServicer, sessions services.SessionServicer) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, sessions: sessions}
}

// LoginLinkRequest represents the request payload for requesting a magic link.
type LoginLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest carries a magic-link token, either from the request body
// or lifted from the link's query parameter by the frontend.
type LoginRequest struct {
	Token string `json:"token"`
}

// AcceptInviteRequest represents the request payload for redeeming an invite.
type AcceptInviteRequest struct {
	Token string `json:"token"`
	Name  string `json:"name" binding:"omitempty,max=100"`
}

// RequestLoginLink emails a one-time login link to a registered address.
func (h *AuthHandler) RequestLoginLink(c *gin.Context) {
	var req LoginLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	delivery, err := h.authService.RequestLoginLink(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"delivery": delivery})
}

// Login redeems a login token for a long-lived session. The token may
// arrive in the body or as the link's "login" query parameter.
func (h *AuthHandler) Login(c *gin.Context) {
	token := c.Query("login")
	if token == "" {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		token = req.Token
	}
	if token == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "token is required"))
		return
	}

	result, err := h.authService.CompleteLogin(token, c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.RefreshToken,
		"user":  result.User,
	})
}

// AcceptInvite redeems an invite token, creating the account on first
// use. The token may arrive in the body or as the link's "invite" query
// parameter.
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	if req.Token == "" {
		req.Token = c.Query("invite")
	}
	if req.Token == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "token is required"))
		return
	}

	result, err := h.authService.AcceptInvite(req.Token, req.Name, c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": result.RefreshToken,
		"user":  result.User,
	})
}

// Profile returns the authenticated user with their settings.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	settings, err := h.userService.GetSettings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "settings": settings})
}

// LogoutEverywhere revokes all of the user's sessions, including the one
// making this request.
func (h *AuthHandler) LogoutEverywhere(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.sessions.RevokeAll(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All sessions revoked"})
}
