package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"swingtrack/internal/config"
	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/logger"
	"swingtrack/internal/mailer"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
	"swingtrack/internal/tokens"
)

const (
	loginLinkTTL        = 15 * time.Minute
	defaultInviteTTLMin = 60

	// One login link per 30 seconds per email, with a small burst for
	// flaky inboxes.
	loginLinkRate  = rate.Limit(1.0 / 30.0)
	loginLinkBurst = 3
)

// authService orchestrates invite issuance/acceptance and magic-link
// login against the token codec, the user store, and the mailer.
type authService struct {
	db       *gorm.DB
	codec    *tokens.Codec
	mail     mailer.Mailer
	users    UserServicer
	sessions SessionServicer
	appURL   string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(db *gorm.DB, codec *tokens.Codec, mail mailer.Mailer, users UserServicer, sessions SessionServicer, cfg *config.Config) AuthServicer {
	return &authService{
		db:       db,
		codec:    codec,
		mail:     mail,
		users:    users,
		sessions: sessions,
		appURL:   cfg.AppURL,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the per-email limiter, creating it on first use.
func (s *authService) limiterFor(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[email]
	if !ok {
		lim = rate.NewLimiter(loginLinkRate, loginLinkBurst)
		s.limiters[email] = lim
	}
	return lim
}

// randomPayload returns a random URL-safe string used as the secret
// payload of invite tokens.
func randomPayload() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// deliver sends a magic link by email, falling back to returning the
// link for on-screen display when delivery is not configured. Delivery
// degradation is a mode, not an error.
func (s *authService) deliver(to, subject, body, link string) (*LinkDelivery, error) {
	result, err := s.mail.Send(to, subject, body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if result.Mock {
		return &LinkDelivery{Mock: true, Link: link}, nil
	}
	return &LinkDelivery{Delivered: true}, nil
}

// IssueInvite mints a single-use invite: a random secret payload is
// wrapped in a signed token with the admin-chosen TTL and persisted so
// acceptance can enforce one-time consumption.
func (s *authService) IssueInvite(adminID uint, email, name string, ttlMinutes int) (*models.Invite, *LinkDelivery, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	if ttlMinutes <= 0 {
		ttlMinutes = defaultInviteTTLMin
	}

	payload, err := randomPayload()
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	ttl := time.Duration(ttlMinutes) * time.Minute
	signed, err := s.codec.Issue(payload, ttl)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	invite := &models.Invite{
		Email:     email,
		Name:      name,
		Token:     signed,
		ExpiresAt: time.Now().Add(ttl),
		InvitedBy: adminID,
	}
	if err := s.db.Create(invite).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link := fmt.Sprintf("%s/?invite=%s", s.appURL, signed)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Accept your invite: <a href='%s'>Open</a>. The link expires in %d minutes.</p>", name, link, ttlMinutes)
	delivery, err := s.deliver(email, "You're invited to Swing Tracker", body, link)
	if err != nil {
		return nil, nil, err
	}

	logger.Get().Infow("invite issued", "email", email, "invited_by", adminID, "ttl_minutes", ttlMinutes, "mock", delivery.Mock)
	return invite, delivery, nil
}

// AcceptInvite redeems an invite token: signature and expiry are
// checked by the codec, then the invite row is consumed exactly once
// with a conditional update, the user is found-or-created, and a
// long-lived session is established. A second acceptance of the same
// token fails and creates nothing.
func (s *authService) AcceptInvite(token, name, userAgent string) (*AuthResult, error) {
	if _, err := s.codec.Verify(token); err != nil {
		return nil, err
	}

	var invite models.Invite
	if err := s.db.Where("token = ?", token).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if invite.Used() {
		return nil, apperrors.ErrInviteUsed
	}

	if name == "" {
		name = invite.Name
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional consumption: only one of two racing acceptances
		// can flip used_at.
		res := tx.Model(&models.Invite{}).
			Where("id = ? AND used_at IS NULL", invite.ID).
			Update("used_at", time.Now())
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInviteUsed
		}

		var txErr error
		user, txErr = NewUserService(tx).FindOrCreate(invite.Email, name)
		return txErr
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	refreshToken, err := s.sessions.Create(user, userAgent)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("invite accepted", "email", user.Email, "user_id", user.ID)
	return &AuthResult{User: user, RefreshToken: refreshToken}, nil
}

// RequestLoginLink mints a short-lived login token for an existing
// active user and delivers it by email, or returns it for display when
// the mailer is unconfigured.
func (s *authService) RequestLoginLink(email string) (*LinkDelivery, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	if !s.limiterFor(email).Allow() {
		return nil, apperrors.ErrRateLimited
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserSuspended
	}

	token, err := s.codec.Issue(email, loginLinkTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link := fmt.Sprintf("%s/?login=%s", s.appURL, token)
	body := fmt.Sprintf("<p>Click to sign in: <a href='%s'>Sign in</a> (valid 15 min)</p>", link)
	delivery, err := s.deliver(email, "Your login link", body, link)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("login link issued", "email", email, "mock", delivery.Mock)
	return delivery, nil
}

// CompleteLogin redeems a login token: the payload is the normalized
// email of the account, which must exist and be active. On success a
// new long-lived session is established.
func (s *authService) CompleteLogin(token, userAgent string) (*AuthResult, error) {
	payload, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(payload)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrUserSuspended
	}

	refreshToken, err := s.sessions.Create(user, userAgent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now

	logger.Get().Infow("login completed", "email", user.Email, "user_id", user.ID)
	return &AuthResult{User: user, RefreshToken: refreshToken}, nil
}

// ListInvites returns invites newest first, for the admin view.
func (s *authService) ListInvites(page pagination.PageRequest) (*pagination.PageResponse[models.Invite], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Invite{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invites []models.Invite
	if err := s.db.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(invites, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SweepExpiredInvites deletes invites that are past expiry and were
// never used. Consumed invites are kept for the audit trail; sessions
// are never touched.
func (s *authService) SweepExpiredInvites() (int64, error) {
	res := s.db.Where("expires_at < ? AND used_at IS NULL", time.Now()).Delete(&models.Invite{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}
