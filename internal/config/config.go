// Package config collects runtime knobs from the environment with defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr     string
	LogLevel string

	JWTSecret string
	TokenTTL  time.Duration

	// AuthBackend selects the user store: "memory" (default) or "postgres".
	// The catalog and cart are always in memory; they are the authoritative
	// runtime state for the lifetime of the process.
	AuthBackend   string
	DatabaseURL   string
	MigrationsDir string

	MetricsEnabled bool
	MetricsToken   string

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func Load() Config {
	return Config{
		Addr:     getenv("ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		JWTSecret: getenv("JWT_SECRET", "dev-secret"),
		TokenTTL:  durenv("TOKEN_TTL_MINUTES", 24*60),

		AuthBackend:   getenv("AUTH_BACKEND", "memory"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		MigrationsDir: getenv("MIGRATIONS_DIR", "migrations"),

		MetricsEnabled: boolenv("METRICS_ENABLED", false),
		MetricsToken:   getenv("METRICS_TOKEN", ""),

		AuthRateLimit:  intenv("AUTH_RATE_LIMIT", 30),
		AuthRateWindow: durenv("AUTH_RATE_WINDOW_MINUTES", 1),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intenv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenv(key string, defMinutes int) time.Duration {
	return time.Duration(intenv(key, defMinutes)) * time.Minute
}
