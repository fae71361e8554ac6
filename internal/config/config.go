// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required variables are enforced by must()
// and missing values abort startup.
type Config struct {
	Env                   string // application environment (e.g. "dev", "prod")
	Port                  string // HTTP port to listen on
	DBUser                string // database username
	DBPass                string // database password (optional)
	DBHost                string // database host address
	DBPort                string // database port number
	DBName                string // database name
	JWTSecret             string // secret used to sign JWTs
	AccessTTLMin          int    // access token time-to-live in minutes
	RefreshTTLDays        int    // refresh token time-to-live in days
	BcryptCost            int    // bcrypt cost for password hashing
	StripeSecretKey       string // payment provider API key
	StripeBaseURL         string // override for tests/sandboxes (optional)
	ChecklistDeadlineDays int    // advisory move-in checklist deadline
	SweepIntervalSec      int    // lifecycle sweeper interval in seconds
}

// Load reads configuration values from environment variables and
// returns a Config.
func Load() Config {
	return Config{
		Env:                   must("APP_ENV"),
		Port:                  must("APP_PORT"),
		DBUser:                must("DB_USER"),
		DBPass:                os.Getenv("DB_PASS"), // empty allowed
		DBHost:                must("DB_HOST"),
		DBPort:                must("DB_PORT"),
		DBName:                must("DB_NAME"),
		JWTSecret:             must("JWT_SECRET"),
		AccessTTLMin:          mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:        mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:            mustInt("BCRYPT_COST"),
		StripeSecretKey:       must("STRIPE_SECRET_KEY"),
		StripeBaseURL:         os.Getenv("STRIPE_BASE_URL"),
		ChecklistDeadlineDays: envIntDefault("CHECKLIST_DEADLINE_DAYS", 14),
		SweepIntervalSec:      envIntDefault("LIFECYCLE_SWEEP_INTERVAL_SEC", 300),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, startup is aborted with a fatal log.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envIntDefault reads an optional integer variable with a fallback.
func envIntDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
