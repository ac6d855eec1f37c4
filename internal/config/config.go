// Package config loads server settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "SCHOOLADMIN_"

// EnvProduction enables secure cookies and requires a CSRF key.
const EnvProduction = "production"

// DefaultAdminPassword seeds the first account outside production.
const DefaultAdminPassword = "change-me-please"

// Config holds the server settings.
type Config struct {
	Env           string
	Addr          string
	DBPath        string
	CSRFKey       []byte
	AdminUsername string
	AdminPassword string
	RedisAddr     string
	SentryDSN     string
	ResendKey     string
	EmailFrom     string
	AlertEmail    string
	LogLevel      slog.Level
	SlowQuery     time.Duration
	SlowRequest   time.Duration
	RateLimit     int // mutating requests per second per client
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// Load reads dotenvPath (when it exists) into the process environment and
// then builds a Config. Variables already set take precedence over the file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from SCHOOLADMIN_* variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:           envOrDefault("ENV", "development"),
		Addr:          envOrDefault("ADDR", ":8080"),
		DBPath:        envOrDefault("DB_PATH", "schooladmin.db"),
		AdminUsername: envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", DefaultAdminPassword),
		RedisAddr:     os.Getenv(Prefix + "REDIS_ADDR"),
		SentryDSN:     os.Getenv(Prefix + "SENTRY_DSN"),
		ResendKey:     os.Getenv(Prefix + "RESEND_KEY"),
		EmailFrom:     envOrDefault("EMAIL_FROM", "School Admin <noreply@localhost>"),
		AlertEmail:    os.Getenv(Prefix + "ALERT_EMAIL"),
	}

	var errs []error
	key, err := csrfKey(os.Getenv(Prefix+"CSRF_KEY"), cfg.Production())
	errs = append(errs, err)
	cfg.CSRFKey = key

	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("%sLOG_LEVEL: %w", Prefix, err))
	}

	slowQuery, err := intVar("SLOW_QUERY_MS", 50)
	errs = append(errs, err)
	cfg.SlowQuery = time.Duration(slowQuery) * time.Millisecond

	slowRequest, err := intVar("SLOW_REQUEST_MS", 200)
	errs = append(errs, err)
	cfg.SlowRequest = time.Duration(slowRequest) * time.Millisecond

	cfg.RateLimit, err = intVar("RATE_LIMIT", 10)
	errs = append(errs, err)

	if cfg.Production() && cfg.AdminPassword == DefaultAdminPassword {
		errs = append(errs, fmt.Errorf("%sADMIN_PASSWORD must be changed in production", Prefix))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// devCSRFKey is used outside production when no key is configured.
var devCSRFKey = []byte("schooladmin-development-csrf-key")

// csrfKey decodes a 64-character hex key into 32 bytes.
func csrfKey(raw string, production bool) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if production {
			return nil, fmt.Errorf("%sCSRF_KEY is required in production", Prefix)
		}
		return devCSRFKey, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("%sCSRF_KEY must be 64 hex characters", Prefix)
	}
	return key, nil
}

func intVar(name string, fallback int) (int, error) {
	raw := os.Getenv(Prefix + name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s%s: want a non-negative integer, got %q", Prefix, name, raw)
	}
	return n, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(Prefix + name); v != "" {
		return v
	}
	return fallback
}
