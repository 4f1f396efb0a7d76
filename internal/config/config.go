package config

import (
	"os"
	"strings"
	"time"

	"sentra-auth/internal/pkg/session"
	"sentra-auth/internal/pkg/token"
)

type AppConfig struct {
	// Server
	HTTPAddr string
	AppEnv   string

	// Stores
	RedisAddr   string
	RedisPass   string
	DatabaseURL string

	// Key material lives on disk under this root, generated on first boot.
	KeystorePath string

	// Tokens
	Token token.Config

	// Session cookie
	Cookie session.CookieOptions

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	SMTPFromName string
	SMTPSecure   bool

	// SMS gateway
	SMSGatewayURL string
	SMSGatewayKey string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	cfg := AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		AppEnv:   getEnv("APP_ENV", "development"),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		KeystorePath: getEnv("KEYSTORE_PATH", "/app/secrets"),

		Token: token.Config{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("TOKEN_ISSUER", "app-auth"),
			Audience: getEnv("TOKEN_AUDIENCE", "my-client"),
			TTL:      24 * time.Hour,
		},

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Sentra Auth"),
		SMTPSecure:   strings.ToLower(getEnv("SMTP_SECURE", "true")) == "true",

		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
		SMSGatewayKey: getEnv("SMS_GATEWAY_KEY", ""),
	}

	cfg.Cookie = session.CookieOptions{
		Name:   getEnv("SESSION_COOKIE_NAME", "_session"),
		Domain: getEnv("SESSION_COOKIE_DOMAIN", ""),
		Path:   "/",
		Secure: cfg.IsProduction(),
		MaxAge: session.DefaultMaxAge,
	}

	return cfg
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
