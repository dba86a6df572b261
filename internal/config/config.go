package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	Timezone      string

	// Upstream APIs
	PrisonAPIURL    string
	VideoLinkAPIURL string
	UpstreamTimeout time.Duration

	// Short-lived state (drafts, flash, reference cache)
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	DraftTTL          time.Duration
	FlashTTL          time.Duration
	ReferenceCacheTTL time.Duration

	// Audit events and movement slips
	DatabaseURL string

	// Tokens are issued by the upstream sign-in service; we only verify them.
	StaffJWTSecret string

	// Per-staff form submission limit.
	SubmitRatePerSecond float64
	SubmitBurst         int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Timezone:      getEnv("TIMEZONE", "Europe/London"),

		PrisonAPIURL:    strings.TrimRight(getEnv("PRISON_API_URL", "http://localhost:8082"), "/"),
		VideoLinkAPIURL: strings.TrimRight(getEnv("VIDEO_LINK_API_URL", "http://localhost:8083"), "/"),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		DraftTTL:          getEnvAsDuration("DRAFT_TTL", time.Hour),
		FlashTTL:          getEnvAsDuration("FLASH_TTL", 5*time.Minute),
		ReferenceCacheTTL: getEnvAsDuration("REFERENCE_CACHE_TTL", 10*time.Minute),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StaffJWTSecret: getEnv("STAFF_JWT_SECRET", ""),

		SubmitRatePerSecond: getEnvAsFloat("SUBMIT_RATE_PER_SECOND", 1),
		SubmitBurst:         getEnvAsInt("SUBMIT_BURST", 5),
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
