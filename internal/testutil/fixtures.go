package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"swingtrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with default settings and a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates an active user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:         email,
		Name:          "Test User",
		Status:        models.UserStatusActive,
		EmailVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	if err := db.Create(models.DefaultSettings(user.ID)).Error; err != nil {
		t.Fatalf("failed to create test user settings: %v", err)
	}
	return user
}

// CreateTestAdmin creates an active admin user with default settings.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	user.IsAdmin = true
	return user
}

// CreateTestSession creates a valid ten-year session for the user.
func CreateTestSession(t *testing.T, db *gorm.DB, user *models.User) *models.Session {
	t.Helper()

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: fmt.Sprintf("test-refresh-token-%d", nextID()),
		Email:        user.Email,
		UserAgent:    "testutil",
		ExpiresAt:    time.Now().Add(3650 * 24 * time.Hour),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}

// CreateTestInvite creates an unused invite expiring in an hour.
func CreateTestInvite(t *testing.T, db *gorm.DB, token string, email string, invitedBy uint) *models.Invite {
	t.Helper()

	invite := &models.Invite{
		Email:     email,
		Name:      "Invitee",
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
		InvitedBy: invitedBy,
	}
	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("failed to create test invite: %v", err)
	}
	return invite
}

// CreateTestTrade creates an open trade with the given quantity and buy price.
func CreateTestTrade(t *testing.T, db *gorm.DB, userID uint, qty int, buyPrice string) *models.Trade {
	t.Helper()

	buy, err := decimal.NewFromString(buyPrice)
	if err != nil {
		t.Fatalf("invalid buy price fixture %q: %v", buyPrice, err)
	}

	trade := &models.Trade{
		UserID:   userID,
		Symbol:   fmt.Sprintf("TST%d", nextID()),
		Market:   "IN",
		Qty:      qty,
		BuyPrice: buy,
		Status:   models.TradeStatusOpen,
	}
	if err := db.Create(trade).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return trade
}

// CreateTestMissed creates an unresolved missed-opportunity entry.
func CreateTestMissed(t *testing.T, db *gorm.DB, userID uint) *models.MissedOpportunity {
	t.Helper()

	missed := &models.MissedOpportunity{
		UserID: userID,
		Symbol: fmt.Sprintf("MISS%d", nextID()),
		Lesson: "wait for the retest",
	}
	if err := db.Create(missed).Error; err != nil {
		t.Fatalf("failed to create test missed entry: %v", err)
	}
	return missed
}
