package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	CORSAllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Video room provider (remote service).
	VideoAPIBaseURL string
	VideoAPIKey     string
	VideoRoomTTL    time.Duration

	// Payment gateway (remote service).
	PaymentGatewayBaseURL string
	PaymentGatewayKey     string
	PaymentWebhookSecret  string
	DepositAmountCents    int

	// Notification email.
	AWSRegion        string
	NotifyFromEmail  string
	NotifyFromName   string
	NotifyOpsEmail   string
	NotifyEmailMuted bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		VideoAPIBaseURL: getEnv("VIDEO_API_BASE_URL", ""),
		VideoAPIKey:     getEnv("VIDEO_API_KEY", ""),
		VideoRoomTTL:    getEnvAsDuration("VIDEO_ROOM_TTL", 2*time.Hour),

		PaymentGatewayBaseURL: getEnv("PAYMENT_GATEWAY_BASE_URL", ""),
		PaymentGatewayKey:     getEnv("PAYMENT_GATEWAY_KEY", ""),
		PaymentWebhookSecret:  getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		DepositAmountCents:    getEnvAsInt("DEPOSIT_AMOUNT_CENTS", 5000),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		NotifyFromEmail:  getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:   getEnv("NOTIFY_FROM_NAME", "Calmora"),
		NotifyOpsEmail:   getEnv("NOTIFY_OPS_EMAIL", ""),
		NotifyEmailMuted: getEnvAsBool("NOTIFY_EMAIL_MUTED", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
