package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("VIDEO_ROOM_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.VideoRoomTTL != 2*time.Hour {
		t.Fatalf("expected default room ttl, got %s", cfg.VideoRoomTTL)
	}
	if cfg.DepositAmountCents != 5000 {
		t.Fatalf("expected default deposit, got %d", cfg.DepositAmountCents)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("DEPOSIT_AMOUNT_CENTS", "7500")
	t.Setenv("VIDEO_ROOM_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.calmora.health, https://admin.calmora.health")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url, got %s", cfg.DatabaseURL)
	}
	if cfg.DepositAmountCents != 7500 {
		t.Fatalf("expected deposit override, got %d", cfg.DepositAmountCents)
	}
	if cfg.VideoRoomTTL != 45*time.Minute {
		t.Fatalf("expected room ttl override, got %s", cfg.VideoRoomTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.calmora.health" {
		t.Fatalf("expected parsed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls enabled")
	}
}
