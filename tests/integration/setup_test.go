package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"swingtrack/internal/broker"
	"swingtrack/internal/config"
	"swingtrack/internal/handlers"
	"swingtrack/internal/logger"
	"swingtrack/internal/mailer"
	"swingtrack/internal/middleware"
	"swingtrack/internal/models"
	"swingtrack/internal/services"
	"swingtrack/internal/tokens"
	"swingtrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Users    services.UserServicer
	Sessions services.SessionServicer
	Auth     services.AuthServicer
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.UserSettings{},
		&models.Invite{},
		&models.Session{},
		&models.Trade{},
		&models.MissedOpportunity{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
// The mailer is unconfigured, so all magic links come back in mock mode and
// tests can follow them directly.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	cfg := &config.Config{
		Env:            "test",
		AppURL:         "http://app.test",
		SecretKey:      "integration-secret",
		SessionTTLDays: 3650,
	}

	// Services
	codec := tokens.NewCodec(cfg.SecretKey)
	mail := mailer.New(cfg)
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db, cfg.SessionTTLDays)
	authService := services.NewAuthService(db, codec, mail, userService, sessionService, cfg)
	tradeService := services.NewTradeService(db, userService)
	missedService := services.NewMissedService(db)
	brokerClient := broker.NewClient(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService, sessionService)
	settingsHandler := handlers.NewSettingsHandler(userService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	missedHandler := handlers.NewMissedHandler(missedService)
	adminHandler := handlers.NewAdminHandler(authService, userService, sessionService)
	brokerHandler := handlers.NewBrokerHandler(brokerClient)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login-link", authHandler.RequestLoginLink)
	auth.POST("/login", authHandler.Login)
	auth.POST("/invite/accept", authHandler.AcceptInvite)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(sessionService))

	protected.GET("/profile", authHandler.Profile)
	protected.POST("/auth/logout-everywhere", authHandler.LogoutEverywhere)
	protected.GET("/settings", settingsHandler.GetSettings)
	protected.PUT("/settings", settingsHandler.UpdateSettings)

	trades := protected.Group("/trades")
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("", tradeHandler.ListTrades)
	trades.GET("/lookup", tradeHandler.LookupTrades)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.PATCH("/:id", tradeHandler.UpdateTrade)
	trades.POST("/:id/close", tradeHandler.CloseTrade)

	insights := protected.Group("/insights")
	insights.GET("/stats", tradeHandler.GetStats)
	insights.GET("/capital", tradeHandler.GetCapital)

	missed := protected.Group("/missed")
	missed.POST("", missedHandler.CreateMissed)
	missed.GET("", missedHandler.ListMissed)
	missed.PUT("/:id/resolve", missedHandler.ResolveMissed)

	brokerRoutes := protected.Group("/broker")
	brokerRoutes.GET("/status", brokerHandler.Status)
	brokerRoutes.POST("/orders", brokerHandler.PlaceOrder)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.POST("/invites", adminHandler.CreateInvite)
	admin.GET("/invites", adminHandler.ListInvites)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
	admin.POST("/users/:id/revoke-sessions", adminHandler.RevokeUserSessions)
	admin.GET("/users/:id/sessions", adminHandler.ListUserSessions)

	return &testApp{
		DB:       db,
		Router:   router,
		Users:    userService,
		Sessions: sessionService,
		Auth:     authService,
	}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// bootAdmin bootstraps the owner account and returns a session token for it.
func (app *testApp) bootAdmin(t *testing.T) string {
	t.Helper()
	if err := app.Users.EnsureOwner("owner@test.com", "Owner"); err != nil {
		t.Fatalf("owner bootstrap failed: %v", err)
	}
	owner, err := app.Users.FindByEmail("owner@test.com")
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	token, err := app.Sessions.Create(owner, "integration-test")
	if err != nil {
		t.Fatalf("owner session failed: %v", err)
	}
	return token
}

// linkToken extracts the named query parameter from a mock-delivered link.
func linkToken(t *testing.T, link, param string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("bad link %q: %v", link, err)
	}
	token := u.Query().Get(param)
	if token == "" {
		t.Fatalf("link %q has no %q parameter", link, param)
	}
	return token
}

// joinViaInvite walks the full invite flow and returns the new member's
// session token.
func (app *testApp) joinViaInvite(t *testing.T, adminToken, email string) string {
	t.Helper()

	rec := app.request("POST", "/api/v1/admin/invites",
		fmt.Sprintf(`{"email":%q,"name":"Member"}`, email), adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite failed: %d %s", rec.Code, rec.Body.String())
	}
	delivery := parseJSON(t, rec)["delivery"].(map[string]interface{})
	invite := linkToken(t, delivery["link"].(string), "invite")

	rec = app.request("POST", "/api/v1/auth/invite/accept",
		fmt.Sprintf(`{"token":%q}`, invite), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("accept failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}
