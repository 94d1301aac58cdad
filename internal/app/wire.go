package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/chainpulse/walletlens/internal/blob/s3"
	"github.com/chainpulse/walletlens/internal/cache/redis"
	"github.com/chainpulse/walletlens/internal/config"
	"github.com/chainpulse/walletlens/internal/crypto"
	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/notify"
	"github.com/chainpulse/walletlens/internal/platform/gmgn"
	"github.com/chainpulse/walletlens/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	GMGN *gmgn.Client

	SnapshotStore   domain.SnapshotStore
	SupplementCache domain.SupplementCache
	RateLimiter     domain.RateLimiter
	LockManager     domain.LockManager
	Archiver        domain.EnvelopeArchiver

	Notifier *notify.Notifier
}

// needsPostgres returns true for modes that persist snapshots.
func needsPostgres(mode string) bool {
	return mode == "serve"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis (rate limiting, supplement cache, refresh lock) ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SupplementCache = redis.NewSupplementCache(redisClient, cfg.Enrich.CacheTTL.Duration)

	// --- PostgreSQL (only for modes that persist snapshots) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.SnapshotStore = postgres.NewSnapshotStore(pgClient.Pool())
	}

	// --- S3 envelope archive (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3Client)
	}

	// --- Upstream client ---
	cookie, err := crypto.LoadCookie(crypto.CookieConfig{
		RawCookie:           cfg.GMGN.Cookie,
		EncryptedCookiePath: cfg.GMGN.EncryptedCookiePath,
		CookiePassword:      cfg.GMGN.CookiePassword,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: session cookie: %w", err)
	}

	client := gmgn.NewClient(cfg.GMGN.BaseURL, cookie, deps.RateLimiter, deps.Archiver)
	if cfg.GMGN.RateLimit > 0 && cfg.GMGN.RateWindow.Duration > 0 {
		client.SetRateLimit(cfg.GMGN.RateLimit, cfg.GMGN.RateWindow.Duration)
	}
	deps.GMGN = client

	// --- Operator notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, slog.Default())

	return deps, cleanup, nil
}
