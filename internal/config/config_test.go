package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PRISON_API_URL", "")
	t.Setenv("DRAFT_TTL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SUBMIT_BURST", "")
	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.PrisonAPIURL != "http://localhost:8082" {
		t.Fatalf("unexpected prison api url %s", cfg.PrisonAPIURL)
	}
	if cfg.DraftTTL != time.Hour {
		t.Fatalf("expected default draft ttl, got %s", cfg.DraftTTL)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.SubmitBurst != 5 {
		t.Fatalf("expected default submit burst, got %d", cfg.SubmitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("PRISON_API_URL", "https://prison-api.example/")
	t.Setenv("FLASH_TTL", "90s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")
	t.Setenv("SUBMIT_RATE_PER_SECOND", "0.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.PrisonAPIURL != "https://prison-api.example" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.PrisonAPIURL)
	}
	if cfg.FlashTTL != 90*time.Second {
		t.Fatalf("expected flash ttl override, got %s", cfg.FlashTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.SubmitRatePerSecond != 0.5 {
		t.Fatalf("expected submit rate override, got %v", cfg.SubmitRatePerSecond)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Fatalf("expected invalid duration to fall back, got %s", cfg.UpstreamTimeout)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
