// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration shared by the server and the worker.
type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	ReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	RequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"25s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns    int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxConnIdle time.Duration `envconfig:"DB_MAX_CONN_IDLE" default:"30m"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"venueledger"`

	IdempotencyEnabled bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
	IdempotencyTTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"10m"`

	SettingsCacheEnabled bool `envconfig:"SETTINGS_CACHE_ENABLED" default:"false"`

	// WorkerInterval is how often the worker checks whether yesterday's DAILY reports are due.
	WorkerInterval time.Duration `envconfig:"WORKER_INTERVAL" default:"1h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.New("request timeout must be positive")
	}
	return &cfg, nil
}

// IsDevelopment returns true for local runs (pretty logs, debug gin mode).
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// RequireJWTSecret fails fast when the HTTP server would run without token validation.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	return nil
}
