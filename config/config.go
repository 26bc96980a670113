package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Disbursement DisbursementConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Requests allowed per client IP per minute. Webhook retries from the
	// gateways count against it, so keep it generous.
	RateLimitPerMin int
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// GatewayConfig configures the collection gateway (payment intentions + refunds).
type GatewayConfig struct {
	BaseURL       string
	SecretKey     string
	PublicKey     string
	WebhookSecret string
}

// DisbursementConfig configures the payout gateway. WebhookSecret signs the
// disbursement status callbacks (HMAC-SHA256 over the raw body).
type DisbursementConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getenv("PORT", "8080"),
			Env:             getenv("APP_ENV", "development"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RateLimitPerMin: getenvInt("RATE_LIMIT_PER_MIN", 120),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "staynest:staynest@tcp(localhost:3306)/staynest?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "staynest",
		},
		Gateway: GatewayConfig{
			BaseURL:       getenv("GATEWAY_BASE_URL", "https://accept.paymob.com"),
			SecretKey:     getenv("GATEWAY_SECRET_KEY", ""),
			PublicKey:     getenv("GATEWAY_PUBLIC_KEY", ""),
			WebhookSecret: getenv("GATEWAY_WEBHOOK_SECRET", ""),
		},
		Disbursement: DisbursementConfig{
			BaseURL:       getenv("DISBURSE_BASE_URL", "https://payouts.paymobsolutions.com"),
			APIKey:        getenv("DISBURSE_API_KEY", ""),
			WebhookSecret: getenv("DISBURSE_WEBHOOK_SECRET", ""),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
