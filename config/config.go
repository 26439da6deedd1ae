package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Env          string
	ServiceName  string
	ListenAddr   string
	LogLevel     string
	DBURL        string
	RedisURL     string
	SymmetricKey string
	SessionTTL   time.Duration

	CorsOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	SMTP  SMTPConfig
	Admin AdminSeed
}

// SMTPConfig holds outgoing mail settings. An empty Host disables mail.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// AdminSeed describes the bootstrap administrator created at startup when Email is set.
type AdminSeed struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// IsProduction reports whether the service runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables, reading a .env file first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(lookup func(string) (string, bool)) (*AppConfig, error) {
	get := func(name, def string) string {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		return def
	}

	var missing []string
	require := func(name string) string {
		v := get(name, "")
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	cfg := &AppConfig{
		Env:          get("APP_ENV", "development"),
		ServiceName:  get("SERVICE_NAME", "teleclinic"),
		ListenAddr:   get("LISTEN_ADDR", ":8930"),
		LogLevel:     get("LOG_LEVEL", "info"),
		DBURL:        require("DB_URL"),
		RedisURL:     require("REDIS_URL"),
		SymmetricKey: require("SYMMETRIC_KEY"),
		CorsOrigins:  splitList(get("CORS_ORIGINS", "http://localhost:3000")),
		SMTP: SMTPConfig{
			Host:     get("SMTP_HOST", ""),
			User:     get("SMTP_USER", ""),
			Password: get("SMTP_PASS", ""),
			From:     get("SMTP_FROM", ""),
		},
		Admin: AdminSeed{
			Email:    get("ADMIN_EMAIL", ""),
			Password: get("ADMIN_PASSWORD", ""),
			FullName: get("ADMIN_NAME", "Administrator"),
			Phone:    get("ADMIN_PHONE", "+000000000"),
		},
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	if len(cfg.SymmetricKey) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long, got %d", len(cfg.SymmetricKey))
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "15"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "30")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	if cfg.SMTP.Port, err = strconv.Atoi(get("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	if cfg.Admin.Email != "" && cfg.Admin.Password == "" {
		return nil, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
