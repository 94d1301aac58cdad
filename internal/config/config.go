// Package config defines the top-level configuration for the walletlens
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by WALLETLENS_* environment variables.
type Config struct {
	GMGN     GMGNConfig     `toml:"gmgn"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Enrich   EnrichConfig   `toml:"enrich"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// GMGNConfig holds upstream API parameters and session credentials. The
// cookie can be given inline, or as an encrypted file plus the password that
// unlocks it.
type GMGNConfig struct {
	BaseURL             string   `toml:"base_url"`
	Chain               string   `toml:"chain"`
	Cookie              string   `toml:"cookie"`
	EncryptedCookiePath string   `toml:"encrypted_cookie_path"`
	CookiePassword      string   `toml:"cookie_password"`
	RateLimit           int      `toml:"rate_limit"`
	RateWindow          duration `toml:"rate_window"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for raw response
// archival. Archival is off when not Enabled.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// EnrichConfig tunes supplement enrichment of ranking records.
type EnrichConfig struct {
	BatchSize   int      `toml:"batch_size"`
	Pace        duration `toml:"pace"`
	MaxAttempts int      `toml:"max_attempts"`
	Backoff     duration `toml:"backoff"`
	CacheTTL    duration `toml:"cache_ttl"`
}

// RefreshConfig controls the background leaderboard refresher in serve mode.
type RefreshConfig struct {
	Enabled       bool     `toml:"enabled"`
	Interval      duration `toml:"interval"`
	Periods       []string `toml:"periods"`
	WalletTags    []string `toml:"wallet_tags"`
	RetentionDays int      `toml:"retention_days"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"` // empty disables authentication
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds operator alerting channels. All channels are optional;
// an empty config disables notifications entirely.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		GMGN: GMGNConfig{
			BaseURL:    "https://gmgn.ai",
			Chain:      "bsc",
			RateLimit:  30,
			RateWindow: duration{time.Minute},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "walletlens",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "walletlens-envelopes",
			ForcePathStyle: true,
		},
		Enrich: EnrichConfig{
			BatchSize:   10,
			Pace:        duration{500 * time.Millisecond},
			MaxAttempts: 2,
			Backoff:     duration{time.Second},
			CacheTTL:    duration{10 * time.Minute},
		},
		Refresh: RefreshConfig{
			Enabled:       true,
			Interval:      duration{15 * time.Minute},
			Periods:       []string{"7d"},
			WalletTags:    []string{"smart_degen", "pump_smart"},
			RetentionDays: 30,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"refresh_failed", "session_rejected"},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve": true,
	"once":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validPeriods enumerates the ranking periods the upstream serves.
var validPeriods = map[string]bool{
	"1d":  true,
	"7d":  true,
	"30d": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, once)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// GMGN
	if c.GMGN.BaseURL == "" {
		errs = append(errs, "gmgn: base_url must not be empty")
	}
	if c.GMGN.Chain == "" {
		errs = append(errs, "gmgn: chain must not be empty")
	}
	if c.GMGN.EncryptedCookiePath != "" && c.GMGN.CookiePassword == "" {
		errs = append(errs, "gmgn: cookie_password is required when encrypted_cookie_path is set")
	}
	if c.GMGN.RateLimit < 1 {
		errs = append(errs, "gmgn: rate_limit must be >= 1")
	}
	if c.GMGN.RateWindow.Duration <= 0 {
		errs = append(errs, "gmgn: rate_window must be > 0")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 checks only apply when archival is on.
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Enrich
	if c.Enrich.BatchSize < 1 {
		errs = append(errs, "enrich: batch_size must be >= 1")
	}
	if c.Enrich.MaxAttempts < 1 {
		errs = append(errs, "enrich: max_attempts must be >= 1")
	}
	if c.Enrich.Pace.Duration < 0 {
		errs = append(errs, "enrich: pace must not be negative")
	}

	// Refresh
	if c.Refresh.Enabled {
		if c.Refresh.Interval.Duration <= 0 {
			errs = append(errs, "refresh: interval must be > 0 when enabled")
		}
		for _, p := range c.Refresh.Periods {
			if !validPeriods[p] {
				errs = append(errs, fmt.Sprintf("refresh: unknown period %q (valid: 1d, 7d, 30d)", p))
			}
		}
		if c.Refresh.RetentionDays < 1 {
			errs = append(errs, "refresh: retention_days must be >= 1 when enabled")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
