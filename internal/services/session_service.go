package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
)

const userAgentMaxLen = 200

// sessionService handles refresh-session business logic. Sessions are
// never deleted here: revocation and expiry alone govern validity,
// which keeps a full audit trail of every sign-in.
type sessionService struct {
	db      *gorm.DB
	ttlDays int
}

// NewSessionService creates a new SessionServicer issuing sessions with
// the given lifetime in days.
func NewSessionService(db *gorm.DB, ttlDays int) SessionServicer {
	return &sessionService{db: db, ttlDays: ttlDays}
}

// newRefreshToken returns a cryptographically random, URL-safe opaque
// token. Nothing about it is derived from user-visible data.
func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create issues a new refresh session bound to the user and returns the
// opaque token.
func (s *sessionService) Create(user *models.User, userAgent string) (string, error) {
	token, err := newRefreshToken()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(userAgent) > userAgentMaxLen {
		userAgent = userAgent[:userAgentMaxLen]
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: token,
		Email:        user.Email,
		UserAgent:    userAgent,
		ExpiresAt:    time.Now().Add(time.Duration(s.ttlDays) * 24 * time.Hour),
	}
	if err := s.db.Create(session).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return token, nil
}

// Resolve authenticates a refresh token: the session must exist, be
// unrevoked and unexpired, and its user must still be active. On
// success the user's last-login timestamp is touched. Every call hits
// the store, so revocation takes effect on the very next request.
func (s *sessionService) Resolve(refreshToken string) (*models.User, error) {
	var session models.Session
	if err := s.db.Where("refresh_token = ?", refreshToken).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionInvalid
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !session.Valid(time.Now()) {
		return nil, apperrors.ErrSessionInvalid
	}

	var user models.User
	if err := s.db.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionInvalid
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrSessionInvalid
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now

	return &user, nil
}

// RevokeAll flags every session owned by the user as revoked. Other
// users' sessions are untouched and no rows are deleted.
func (s *sessionService) RevokeAll(userID uint) error {
	if err := s.db.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListForUser returns a user's sessions newest first, for admin audit.
func (s *sessionService) ListForUser(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Session], error) {
	page.Defaults()

	base := s.db.Model(&models.Session{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sessions []models.Session
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(sessions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
