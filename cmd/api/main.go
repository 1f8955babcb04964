package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"swingtrack/internal/broker"
	"swingtrack/internal/config"
	"swingtrack/internal/database"
	"swingtrack/internal/handlers"
	"swingtrack/internal/logger"
	"swingtrack/internal/mailer"
	"swingtrack/internal/middleware"
	"swingtrack/internal/scheduler"
	"swingtrack/internal/services"
	"swingtrack/internal/tokens"
	"swingtrack/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	codec := tokens.NewCodec(appConfig.SecretKey)
	mail := mailer.New(appConfig)
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db, appConfig.SessionTTLDays)
	authService := services.NewAuthService(db, codec, mail, userService, sessionService, appConfig)
	tradeService := services.NewTradeService(db, userService)
	missedService := services.NewMissedService(db)
	brokerClient := broker.NewClient(appConfig)

	// Bootstrap the owner account so the first admin can sign in
	if err := userService.EnsureOwner(appConfig.OwnerEmail, appConfig.OwnerName); err != nil {
		return fmt.Errorf("failed to bootstrap owner account: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService, sessionService)
	settingsHandler := handlers.NewSettingsHandler(userService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	missedHandler := handlers.NewMissedHandler(missedService)
	adminHandler := handlers.NewAdminHandler(authService, userService, sessionService)
	brokerHandler := handlers.NewBrokerHandler(brokerClient)

	// Start the maintenance scheduler
	jobs, err := scheduler.New(authService)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Initialize Gin router
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login-link", authHandler.RequestLoginLink)
	auth.POST("/login", authHandler.Login)
	auth.POST("/invite/accept", authHandler.AcceptInvite)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(sessionService))

	protected.GET("/profile", authHandler.Profile)
	protected.POST("/auth/logout-everywhere", authHandler.LogoutEverywhere)

	protected.GET("/settings", settingsHandler.GetSettings)
	protected.PUT("/settings", settingsHandler.UpdateSettings)

	// Trade routes
	trades := protected.Group("/trades")
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("", tradeHandler.ListTrades)
	trades.GET("/lookup", tradeHandler.LookupTrades)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.PATCH("/:id", tradeHandler.UpdateTrade)
	trades.POST("/:id/close", tradeHandler.CloseTrade)

	// Insights
	insights := protected.Group("/insights")
	insights.GET("/stats", tradeHandler.GetStats)
	insights.GET("/capital", tradeHandler.GetCapital)

	// Missed-opportunity log
	missed := protected.Group("/missed")
	missed.POST("", missedHandler.CreateMissed)
	missed.GET("", missedHandler.ListMissed)
	missed.PUT("/:id/resolve", missedHandler.ResolveMissed)

	// Broker stub
	brokerRoutes := protected.Group("/broker")
	brokerRoutes.GET("/status", brokerHandler.Status)
	brokerRoutes.POST("/orders", brokerHandler.PlaceOrder)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.POST("/invites", adminHandler.CreateInvite)
	admin.GET("/invites", adminHandler.ListInvites)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
	admin.POST("/users/:id/revoke-sessions", adminHandler.RevokeUserSessions)
	admin.GET("/users/:id/sessions", adminHandler.ListUserSessions)

	log.Infof("Starting SwingTrack backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
