package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainpulse/walletlens/internal/domain"
)

// refreshLockTTL bounds how long a crashed instance can block the others.
const refreshLockTTL = 5 * time.Minute

// RefreshService periodically captures leaderboard snapshots so the API can
// serve history and survive upstream outages. A distributed lock keeps
// concurrent instances from refreshing the same periods at once.
type RefreshService struct {
	wallets   *WalletService
	snapshots domain.SnapshotStore
	locks     domain.LockManager
	periods   []string
	retention time.Duration
	notify    SnapshotNotifier
	alerts    Alerter
	logger    *slog.Logger
}

// SnapshotNotifier receives an event each time a fresh snapshot is saved.
// Used to push live updates to WebSocket clients.
type SnapshotNotifier func(kind, period string, count int)

// Alerter delivers operator notifications. Matches notify.Notifier.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// NewRefreshService creates a RefreshService. locks may be nil for
// single-instance deployments.
func NewRefreshService(
	wallets *WalletService,
	snapshots domain.SnapshotStore,
	locks domain.LockManager,
	periods []string,
	retentionDays int,
	logger *slog.Logger,
) *RefreshService {
	if len(periods) == 0 {
		periods = []string{"7d"}
	}
	return &RefreshService{
		wallets:   wallets,
		snapshots: snapshots,
		locks:     locks,
		periods:   periods,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// OnSnapshot registers a notifier invoked after every saved snapshot. Call
// before Run; the notifier runs on the refresh goroutine and must not block.
func (s *RefreshService) OnSnapshot(fn SnapshotNotifier) {
	s.notify = fn
}

// SetAlerter registers an operator notification channel for refresh failures.
// Call before Run.
func (s *RefreshService) SetAlerter(a Alerter) {
	s.alerts = a
}

// RefreshOnce captures one snapshot per configured period for both wallet
// and token leaderboards, then sweeps expired snapshots. Per-period failures
// are logged and skipped so one flaky period does not starve the rest.
func (s *RefreshService) RefreshOnce(ctx context.Context) error {
	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, "refresh", refreshLockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				s.logger.DebugContext(ctx, "refresh_service: another instance holds the refresh lock")
				return nil
			}
			return fmt.Errorf("refresh_service: acquire lock: %w", err)
		}
		defer unlock()
	}

	for _, period := range s.periods {
		if err := s.snapshotWalletRank(ctx, period); err != nil {
			s.logger.WarnContext(ctx, "refresh_service: wallet rank snapshot failed",
				slog.String("period", period),
				slog.String("error", err.Error()),
			)
			s.alert(ctx, period, err)
		}
		if err := s.snapshotTokenRank(ctx, period); err != nil {
			s.logger.WarnContext(ctx, "refresh_service: token rank snapshot failed",
				slog.String("period", period),
				slog.String("error", err.Error()),
			)
			s.alert(ctx, period, err)
		}
	}

	if s.retention > 0 {
		cutoff := time.Now().Add(-s.retention)
		deleted, err := s.snapshots.DeleteBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("refresh_service: retention sweep: %w", err)
		}
		if deleted > 0 {
			s.logger.InfoContext(ctx, "refresh_service: swept expired snapshots",
				slog.Int64("deleted", deleted),
			)
		}
	}
	return nil
}

// alert forwards a refresh failure to the operator channel. A rejected
// upstream session gets its own event type: it means the cookie expired and
// needs human attention.
func (s *RefreshService) alert(ctx context.Context, period string, err error) {
	if s.alerts == nil {
		return
	}
	event, title := "refresh_failed", "Leaderboard refresh failed"
	if errors.Is(err, domain.ErrUnauthorized) {
		event, title = "session_rejected", "Upstream session rejected"
	}
	if nerr := s.alerts.Notify(ctx, event, title,
		fmt.Sprintf("period %s: %v", period, err)); nerr != nil {
		s.logger.WarnContext(ctx, "refresh_service: alert delivery failed",
			slog.String("error", nerr.Error()),
		)
	}
}

// Run refreshes on the given interval until the context is cancelled. The
// first refresh runs immediately.
func (s *RefreshService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RefreshOnce(ctx); err != nil {
			s.logger.ErrorContext(ctx, "refresh_service: refresh failed",
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LatestWalletRank returns the newest stored wallet leaderboard for a period.
func (s *RefreshService) LatestWalletRank(ctx context.Context, period string) ([]domain.RawRecord, time.Time, error) {
	return s.latest(ctx, "wallet_rank", period)
}

// LatestTokenRank returns the newest stored token leaderboard for a period.
func (s *RefreshService) LatestTokenRank(ctx context.Context, period string) ([]domain.RawRecord, time.Time, error) {
	return s.latest(ctx, "token_rank", period)
}

func (s *RefreshService) latest(ctx context.Context, kind, period string) ([]domain.RawRecord, time.Time, error) {
	snap, err := s.snapshots.GetLatest(ctx, kind, period)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("refresh_service: latest %s/%s: %w", kind, period, err)
	}
	var recs []domain.RawRecord
	if err := json.Unmarshal(snap.Payload, &recs); err != nil {
		return nil, time.Time{}, fmt.Errorf("refresh_service: decode %s/%s: %w", kind, period, err)
	}
	return recs, snap.CreatedAt, nil
}

func (s *RefreshService) snapshotWalletRank(ctx context.Context, period string) error {
	recs, err := s.wallets.TopWallets(ctx, period, 0)
	if err != nil {
		return err
	}
	return s.save(ctx, "wallet_rank", period, recs)
}

func (s *RefreshService) snapshotTokenRank(ctx context.Context, period string) error {
	// Token trending uses its own period vocabulary; the daily bucket is the
	// closest match for ranking periods.
	recs, err := s.wallets.TopTokens(ctx, "24h", 0)
	if err != nil {
		return err
	}
	return s.save(ctx, "token_rank", period, recs)
}

func (s *RefreshService) save(ctx context.Context, kind, period string, recs []domain.RawRecord) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = s.snapshots.Save(ctx, domain.Snapshot{
		Kind:    kind,
		Key:     period,
		Period:  period,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "refresh_service: snapshot saved",
		slog.String("kind", kind),
		slog.String("period", period),
		slog.Int("records", len(recs)),
	)
	if s.notify != nil {
		s.notify(kind, period, len(recs))
	}
	return nil
}
