package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Tenant: the company this instance collects for, injected by the
	// host platform.
	CompanyID string

	// Storage
	DatabaseURL string

	// Outbound calls to the banking partner
	RequestTimeout time.Duration

	// Caches
	ConfigCacheTTL time.Duration

	// Token safety margin subtracted from the server-declared lifetime.
	TokenSafetyMargin time.Duration

	// Resilience
	MaxConcurrency int

	// Observability
	OTLPEndpoint string

	// Auth between the dashboard backend and this service
	JWTSecret string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CompanyID: getEnv("COMPANY_ID", ""),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/dizimoapp"),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		ConfigCacheTTL: getEnvDuration("CONFIG_CACHE_TTL", 5*time.Minute),

		TokenSafetyMargin: getEnvDuration("TOKEN_SAFETY_MARGIN", time.Minute),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret: getEnv("JWT_SECRET", "gateway-default-dev-secret-change-me"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
