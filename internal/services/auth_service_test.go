package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"swingtrack/internal/config"
	"swingtrack/internal/mailer"
	"swingtrack/internal/models"
	"swingtrack/internal/testutil"
	"swingtrack/internal/tokens"
)

// newAuthStack wires an auth service over an unconfigured (mock-mode)
// mailer and an in-memory store.
func newAuthStack(t *testing.T, db *gorm.DB) AuthServicer {
	t.Helper()
	cfg := &config.Config{AppURL: "http://localhost:8080", SecretKey: "test-secret", SessionTTLDays: 3650}
	codec := tokens.NewCodec(cfg.SecretKey)
	users := NewUserService(db)
	sessions := NewSessionService(db, cfg.SessionTTLDays)
	return NewAuthService(db, codec, mailer.New(cfg), users, sessions, cfg)
}

func TestIssueInviteMockDelivery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)
	admin := testutil.CreateTestAdmin(t, db)

	invite, delivery, err := auth.IssueInvite(admin.ID, "New.Trader@Example.com", "New Trader", 30)
	testutil.AssertNoError(t, err)

	if invite.Email != "new.trader@example.com" {
		t.Errorf("expected normalized email, got %q", invite.Email)
	}
	if invite.UsedAt != nil {
		t.Error("fresh invite must be unused")
	}
	if !delivery.Mock || delivery.Link == "" {
		t.Errorf("unconfigured mailer must fall back to a displayable link, got %+v", delivery)
	}
	if invite.ExpiresAt.Before(time.Now().Add(25 * time.Minute)) {
		t.Error("invite expiry should honor the requested TTL")
	}
}

func TestAcceptInviteOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)
	admin := testutil.CreateTestAdmin(t, db)

	invite, _, err := auth.IssueInvite(admin.ID, "invitee@example.com", "Invitee", 60)
	testutil.AssertNoError(t, err)

	result, err := auth.AcceptInvite(invite.Token, "Custom Name", "test-agent")
	testutil.AssertNoError(t, err)
	if result.User.Email != "invitee@example.com" {
		t.Errorf("unexpected user email %q", result.User.Email)
	}
	if result.User.Name != "Custom Name" {
		t.Errorf("expected provided name to win, got %q", result.User.Name)
	}
	if result.RefreshToken == "" {
		t.Error("expected a session to be established")
	}

	// Settings are created atomically with the user.
	var settings models.UserSettings
	if err := db.Where("user_id = ?", result.User.ID).First(&settings).Error; err != nil {
		t.Fatalf("expected settings row: %v", err)
	}

	// Second acceptance fails and creates no duplicate account.
	_, err = auth.AcceptInvite(invite.Token, "", "test-agent")
	testutil.AssertAppError(t, err, "INVITE_USED")

	var count int64
	db.Model(&models.User{}).Where("email = ?", "invitee@example.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one user, got %d", count)
	}
}

func TestAcceptInviteAttachesToExistingAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)
	admin := testutil.CreateTestAdmin(t, db)
	existing := testutil.CreateTestUserWithEmail(t, db, "already@example.com")

	invite, _, err := auth.IssueInvite(admin.ID, "already@example.com", "Again", 60)
	testutil.AssertNoError(t, err)

	result, err := auth.AcceptInvite(invite.Token, "", "test-agent")
	testutil.AssertNoError(t, err)
	if result.User.ID != existing.ID {
		t.Errorf("expected invite to attach to existing user %d, got %d", existing.ID, result.User.ID)
	}
}

func TestAcceptInviteRejectsForgedAndUnknownTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)

	_, err := auth.AcceptInvite("garbage-token", "", "")
	testutil.AssertAppError(t, err, "INVALID_TOKEN")

	// A validly signed token with no matching invite row is rejected
	// without creating anything.
	codec := tokens.NewCodec("test-secret")
	stray, err := codec.Issue("stray-payload", time.Hour)
	testutil.AssertNoError(t, err)
	_, err = auth.AcceptInvite(stray, "", "")
	testutil.AssertAppError(t, err, "INVITE_NOT_FOUND")
}

func TestRequestLoginLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)

	t.Run("unknown_email", func(t *testing.T) {
		_, err := auth.RequestLoginLink("nobody@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("suspended_user", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		if err := db.Model(user).Update("status", models.UserStatusSuspended).Error; err != nil {
			t.Fatal(err)
		}
		_, err := auth.RequestLoginLink(user.Email)
		testutil.AssertAppError(t, err, "USER_SUSPENDED")
	})

	t.Run("active_user_mock_link", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		delivery, err := auth.RequestLoginLink(user.Email)
		testutil.AssertNoError(t, err)
		if !delivery.Mock || delivery.Link == "" {
			t.Errorf("expected mock delivery with link, got %+v", delivery)
		}
	})

	t.Run("rate_limited", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		var limited bool
		for i := 0; i < 5; i++ {
			if _, err := auth.RequestLoginLink(user.Email); err != nil {
				testutil.AssertAppError(t, err, "RATE_LIMITED")
				limited = true
				break
			}
		}
		if !limited {
			t.Error("expected rapid link requests to hit the rate limit")
		}
	})
}

func TestCompleteLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)
	sessions := NewSessionService(db, 3650)
	user := testutil.CreateTestUser(t, db)

	codec := tokens.NewCodec("test-secret")
	token, err := codec.Issue(user.Email, 15*time.Minute)
	testutil.AssertNoError(t, err)

	result, err := auth.CompleteLogin(token, "test-agent")
	testutil.AssertNoError(t, err)
	if result.User.ID != user.ID {
		t.Errorf("logged in as %d, want %d", result.User.ID, user.ID)
	}
	if result.User.LastLoginAt == nil {
		t.Error("expected last_login_at to be set")
	}

	// The issued refresh token authenticates subsequent requests.
	resolved, err := sessions.Resolve(result.RefreshToken)
	testutil.AssertNoError(t, err)
	if resolved.ID != user.ID {
		t.Errorf("session resolves to %d, want %d", resolved.ID, user.ID)
	}
}

func TestCompleteLoginRejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)
	codec := tokens.NewCodec("test-secret")

	t.Run("expired_token", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		token, err := codec.Issue(user.Email, -time.Minute)
		testutil.AssertNoError(t, err)
		_, err = auth.CompleteLogin(token, "")
		testutil.AssertAppError(t, err, "TOKEN_EXPIRED")
	})

	t.Run("unknown_email_payload", func(t *testing.T) {
		token, err := codec.Issue("ghost@example.com", 15*time.Minute)
		testutil.AssertNoError(t, err)
		_, err = auth.CompleteLogin(token, "")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("suspended_account", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		if err := db.Model(user).Update("status", models.UserStatusSuspended).Error; err != nil {
			t.Fatal(err)
		}
		token, err := codec.Issue(user.Email, 15*time.Minute)
		testutil.AssertNoError(t, err)
		_, err = auth.CompleteLogin(token, "")
		testutil.AssertAppError(t, err, "USER_SUSPENDED")
	})
}

func TestSweepExpiredInvites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	auth := newAuthStack(t, db)
	admin := testutil.CreateTestAdmin(t, db)

	expired := testutil.CreateTestInvite(t, db, "expired-token", "a@example.com", admin.ID)
	if err := db.Model(expired).Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatal(err)
	}

	used := testutil.CreateTestInvite(t, db, "used-token", "b@example.com", admin.ID)
	now := time.Now()
	if err := db.Model(used).Updates(map[string]interface{}{"expires_at": now.Add(-time.Hour), "used_at": now}).Error; err != nil {
		t.Fatal(err)
	}

	fresh := testutil.CreateTestInvite(t, db, "fresh-token", "c@example.com", admin.ID)

	deleted, err := auth.SweepExpiredInvites()
	testutil.AssertNoError(t, err)
	if deleted != 1 {
		t.Errorf("expected to sweep 1 invite, got %d", deleted)
	}

	// Consumed and still-valid invites survive the sweep.
	var remaining []models.Invite
	db.Find(&remaining)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 invites to remain, got %d", len(remaining))
	}
	_ = fresh
}
