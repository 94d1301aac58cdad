package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies WALLETLENS_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known WALLETLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── GMGN ──
	setStr(&cfg.GMGN.BaseURL, "WALLETLENS_GMGN_BASE_URL")
	setStr(&cfg.GMGN.Chain, "WALLETLENS_GMGN_CHAIN")
	setStr(&cfg.GMGN.Cookie, "WALLETLENS_GMGN_COOKIE")
	setStr(&cfg.GMGN.EncryptedCookiePath, "WALLETLENS_GMGN_ENCRYPTED_COOKIE_PATH")
	setStr(&cfg.GMGN.CookiePassword, "WALLETLENS_GMGN_COOKIE_PASSWORD")
	setInt(&cfg.GMGN.RateLimit, "WALLETLENS_GMGN_RATE_LIMIT")
	setDuration(&cfg.GMGN.RateWindow, "WALLETLENS_GMGN_RATE_WINDOW")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "WALLETLENS_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "WALLETLENS_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "WALLETLENS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "WALLETLENS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "WALLETLENS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "WALLETLENS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "WALLETLENS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "WALLETLENS_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "WALLETLENS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "WALLETLENS_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "WALLETLENS_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "WALLETLENS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "WALLETLENS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "WALLETLENS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "WALLETLENS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "WALLETLENS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "WALLETLENS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "WALLETLENS_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "WALLETLENS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "WALLETLENS_S3_REGION")
	setStr(&cfg.S3.Bucket, "WALLETLENS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "WALLETLENS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "WALLETLENS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "WALLETLENS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "WALLETLENS_S3_FORCE_PATH_STYLE")

	// ── Enrich ──
	setInt(&cfg.Enrich.BatchSize, "WALLETLENS_ENRICH_BATCH_SIZE")
	setDuration(&cfg.Enrich.Pace, "WALLETLENS_ENRICH_PACE")
	setInt(&cfg.Enrich.MaxAttempts, "WALLETLENS_ENRICH_MAX_ATTEMPTS")
	setDuration(&cfg.Enrich.Backoff, "WALLETLENS_ENRICH_BACKOFF")
	setDuration(&cfg.Enrich.CacheTTL, "WALLETLENS_ENRICH_CACHE_TTL")

	// ── Refresh ──
	setBool(&cfg.Refresh.Enabled, "WALLETLENS_REFRESH_ENABLED")
	setDuration(&cfg.Refresh.Interval, "WALLETLENS_REFRESH_INTERVAL")
	setStringSlice(&cfg.Refresh.Periods, "WALLETLENS_REFRESH_PERIODS")
	setStringSlice(&cfg.Refresh.WalletTags, "WALLETLENS_REFRESH_WALLET_TAGS")
	setInt(&cfg.Refresh.RetentionDays, "WALLETLENS_REFRESH_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "WALLETLENS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "WALLETLENS_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "WALLETLENS_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "WALLETLENS_SERVER_CORS_ORIGINS")

	// Notifications
	setStr(&cfg.Notify.TelegramToken, "WALLETLENS_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "WALLETLENS_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "WALLETLENS_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "WALLETLENS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "WALLETLENS_MODE")
	setStr(&cfg.LogLevel, "WALLETLENS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
