// Command walletlens is the entry point for the wallet analytics service. It
// loads configuration, validates it, wires dependencies, sets up signal
// handling, and starts the application in the configured mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chainpulse/walletlens/internal/app"
	"github.com/chainpulse/walletlens/internal/config"
	"github.com/chainpulse/walletlens/internal/crypto"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	mode := flag.String("mode", "", "override the configured mode (serve or once)")
	flag.Parse()

	// Bootstrap logger until the configured level is known.
	logger := newLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	// encrypt-cookie runs standalone, before any config or dependency wiring.
	if flag.Arg(0) == "encrypt-cookie" {
		if err := encryptCookie(flag.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	// One-shot commands print JSON to stdout, so logs go to stderr there.
	logOut := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Mode, "once") {
		logOut = os.Stderr
	}
	logger = newLogger(logOut, parseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("walletlens starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	application := app.New(cfg, logger, flag.Args())
	defer application.Close()

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if err == context.Canceled {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("walletlens stopped")
}

// encryptCookie reads a plaintext session cookie from stdin, encrypts it with
// the password in WALLETLENS_COOKIE_PASSWORD, and writes the blob to path.
func encryptCookie(path string) error {
	if path == "" {
		return fmt.Errorf("usage: walletlens encrypt-cookie <output-path> < cookie.txt")
	}
	password := os.Getenv("WALLETLENS_COOKIE_PASSWORD")
	if password == "" {
		return fmt.Errorf("WALLETLENS_COOKIE_PASSWORD must be set")
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read cookie from stdin: %w", err)
	}
	cookie := strings.TrimSpace(string(raw))

	blob, err := crypto.EncryptCookie(cookie, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "encrypted cookie written to %s\n", path)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
