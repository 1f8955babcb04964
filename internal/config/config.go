package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// AppURL is the externally reachable base URL used when building
	// magic-link URLs embedded in invite and login emails.
	AppURL string

	// SecretKey signs magic-link tokens.
	SecretKey string

	// SessionTTLDays is the lifetime of refresh sessions. Sessions are
	// deliberately very long-lived so users rarely need a fresh link.
	SessionTTLDays int

	// SMTP delivery. When Host, User, or Password are missing the mailer
	// runs in mock mode and callers display links directly.
	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	FromEmail string

	// Owner bootstrap: when set, an admin account with this email is
	// created at startup if it does not already exist.
	OwnerEmail string
	OwnerName  string

	// Broker stub credentials. All three must be set for the client to
	// report itself configured.
	BrokerAPIKey      string
	BrokerAPISecret   string
	BrokerAccessToken string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		AppURL:    getEnv("APP_URL", "http://localhost:8080"),
		SecretKey: getEnv("APP_SECRET_KEY", "change-me"),

		SMTPHost:  getEnv("SMTP_HOST", ""),
		SMTPPort:  getEnv("SMTP_PORT", "587"),
		SMTPUser:  getEnv("SMTP_USER", ""),
		SMTPPass:  getEnv("SMTP_PASS", ""),
		FromEmail: getEnv("FROM_EMAIL", "no-reply@swingtrack.app"),

		OwnerEmail: getEnv("OWNER_EMAIL", ""),
		OwnerName:  getEnv("OWNER_NAME", "Owner"),

		BrokerAPIKey:      getEnv("BROKER_API_KEY", ""),
		BrokerAPISecret:   getEnv("BROKER_API_SECRET", ""),
		BrokerAccessToken: getEnv("BROKER_ACCESS_TOKEN", ""),
	}

	// Parse session TTL, default ~10 years
	ttlStr := getEnv("SESSION_TTL_DAYS", "3650")
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil || ttl <= 0 {
		log.Printf("Warning: invalid SESSION_TTL_DAYS value '%s', falling back to 3650\n", ttlStr)
		ttl = 3650
	}
	config.SessionTTLDays = ttl

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
