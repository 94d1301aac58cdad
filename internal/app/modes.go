package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chainpulse/walletlens/internal/analytics"
	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/server"
	"github.com/chainpulse/walletlens/internal/server/handler"
	"github.com/chainpulse/walletlens/internal/server/ws"
	"github.com/chainpulse/walletlens/internal/service"
)

// services bundles the domain services shared by both modes.
type services struct {
	tokens  *service.TokenService
	wallets *service.WalletService
	refresh *service.RefreshService
}

func (a *App) buildServices(deps *Dependencies) *services {
	enricher := analytics.NewEnricher(analytics.Policy{
		BatchSize:   a.cfg.Enrich.BatchSize,
		Pace:        a.cfg.Enrich.Pace.Duration,
		MaxAttempts: a.cfg.Enrich.MaxAttempts,
		Backoff:     a.cfg.Enrich.Backoff.Duration,
	})

	tokens := service.NewTokenService(deps.GMGN, enricher, deps.SupplementCache, a.cfg.GMGN.Chain, a.logger)
	wallets := service.NewWalletService(deps.GMGN, a.cfg.GMGN.Chain, a.cfg.Refresh.WalletTags, a.logger)

	var refresh *service.RefreshService
	if deps.SnapshotStore != nil {
		refresh = service.NewRefreshService(
			wallets,
			deps.SnapshotStore,
			deps.LockManager,
			a.cfg.Refresh.Periods,
			a.cfg.Refresh.RetentionDays,
			a.logger,
		)
		if deps.Notifier != nil {
			refresh.SetAlerter(deps.Notifier)
		}
	}

	return &services{tokens: tokens, wallets: wallets, refresh: refresh}
}

// ServeMode runs the HTTP API, the WebSocket hub, and the background
// leaderboard refresher until the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	svcs := a.buildServices(deps)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.logger.With(slog.String("component", "ws")))
	g.Go(func() error { return hub.Run(ctx) })

	if svcs.refresh != nil {
		svcs.refresh.OnSnapshot(func(kind, period string, count int) {
			hub.Broadcast("snapshot", map[string]any{
				"kind":    kind,
				"period":  period,
				"records": count,
			})
		})
	}

	if a.cfg.Refresh.Enabled && svcs.refresh != nil {
		g.Go(func() error {
			return svcs.refresh.Run(ctx, a.cfg.Refresh.Interval.Duration)
		})
	}

	if a.cfg.Server.Enabled {
		handlers := server.Handlers{
			Health:    handler.NewHealthHandler(a.logger),
			Tokens:    handler.NewTokenHandler(svcs.tokens, a.logger),
			Wallets:   handler.NewWalletHandler(svcs.wallets, a.logger),
			Snapshots: handler.NewSnapshotHandler(svcs.refresh, a.logger),
		}
		srv := server.NewServer(server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		}, handlers, hub, deps.RateLimiter, a.logger)

		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})
	}

	return g.Wait()
}

// OnceMode executes a single analytics command and prints the result to
// stdout as JSON. The command and its arguments come from the CLI.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	if len(a.args) == 0 {
		return fmt.Errorf("app: once mode needs a command: first-buyers|hold-time|traders|wallet-profit|kol-profit|top-wallets|top-tokens|search")
	}
	svcs := a.buildServices(deps)

	cmd, rest := a.args[0], a.args[1:]
	arg := func(i int, def string) string {
		if i < len(rest) {
			return rest[i]
		}
		return def
	}

	var (
		out any
		err error
	)
	switch cmd {
	case "first-buyers":
		if len(rest) < 1 {
			return fmt.Errorf("app: usage: first-buyers <token>")
		}
		var report domain.FirstBuyReport
		report, err = svcs.tokens.FirstBuyers(ctx, rest[0])
		out = report
	case "hold-time":
		if len(rest) < 1 {
			return fmt.Errorf("app: usage: hold-time <token>")
		}
		var report domain.HoldTimeReport
		report, err = svcs.tokens.HoldTime(ctx, rest[0])
		out = report
	case "traders":
		if len(rest) < 1 {
			return fmt.Errorf("app: usage: traders <token>")
		}
		out, err = svcs.tokens.TopTraders(ctx, rest[0], 50)
	case "wallet-profit":
		if len(rest) < 1 {
			return fmt.Errorf("app: usage: wallet-profit <wallet> [period]")
		}
		out, err = svcs.wallets.WalletProfit(ctx, rest[0], arg(1, "7d"))
	case "kol-profit":
		if len(rest) < 1 {
			return fmt.Errorf("app: usage: kol-profit <query> [period]")
		}
		out, err = svcs.wallets.KOLProfit(ctx, rest[0], arg(1, "7d"))
	case "top-wallets":
		out, err = svcs.wallets.TopWallets(ctx, arg(0, "7d"), 50)
	case "top-tokens":
		out, err = svcs.wallets.TopTokens(ctx, arg(0, "24h"), 50)
	case "search":
		if len(rest) < 1 {
			return fmt.Errorf("app: usage: search <query>")
		}
		out, err = svcs.wallets.Search(ctx, rest[0])
	default:
		return fmt.Errorf("app: unknown command %q", cmd)
	}
	if err != nil {
		return fmt.Errorf("app: %s: %w", cmd, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("app: encode output: %w", err)
	}
	return nil
}
