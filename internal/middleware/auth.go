package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/services"
)

// AuthMiddleware resolves the bearer refresh token against the session
// store and sets the authenticated user in the context. Every request is
// checked against the store so revocation and suspension take effect
// immediately.
func AuthMiddleware(sessions services.SessionServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperrors.ErrUnauthorized)
			return
		}

		user, err := sessions.Resolve(parts[1])
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				abortWith(c, appErr)
			} else {
				abortWith(c, apperrors.ErrSessionInvalid)
			}
			return
		}

		c.Set("userID", user.ID)
		c.Set("email", user.Email)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

// AdminRequired gates a route group to admin accounts. Must run after
// AuthMiddleware.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			abortWith(c, apperrors.ErrAdminOnly)
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, appErr *apperrors.AppError) {
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
