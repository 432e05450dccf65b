package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected default redis addr, got %s", cfg.RedisAddr)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SaveTimeout != 5*time.Second {
		t.Fatalf("expected default save timeout, got %s", cfg.SaveTimeout)
	}
	if cfg.TrackerRateLimit != 5 {
		t.Fatalf("expected default tracker rate limit, got %v", cfg.TrackerRateLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.com, https://staff.example.com")
	t.Setenv("SAVE_TIMEOUT", "2s")
	t.Setenv("TRACKER_RATE_LIMIT", "0")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis TLS enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staff.example.com" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SaveTimeout != 2*time.Second {
		t.Fatalf("expected save timeout override, got %s", cfg.SaveTimeout)
	}
	if cfg.TrackerRateLimit != 0 {
		t.Fatalf("expected tracker rate limit disabled, got %v", cfg.TrackerRateLimit)
	}
}
