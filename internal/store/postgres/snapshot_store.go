package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainpulse/walletlens/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a new SnapshotStore backed by the given connection
// pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

const snapshotSelectCols = `id, kind, key, period, payload, created_at`

func scanSnapshotRows(rows pgx.Rows) ([]domain.Snapshot, error) {
	var snaps []domain.Snapshot
	for rows.Next() {
		var s domain.Snapshot
		if err := rows.Scan(&s.ID, &s.Kind, &s.Key, &s.Period, &s.Payload, &s.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// Save inserts a snapshot and returns its generated ID.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) (int64, error) {
	const query = `
		INSERT INTO snapshots (kind, key, period, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query, snap.Kind, snap.Key, snap.Period, snap.Payload).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: save snapshot %s/%s: %w", snap.Kind, snap.Key, err)
	}
	return id, nil
}

// GetLatest returns the most recent snapshot for a kind and key.
// It returns domain.ErrNotFound when none exists.
func (s *SnapshotStore) GetLatest(ctx context.Context, kind, key string) (domain.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM snapshots
		WHERE kind = $1 AND key = $2
		ORDER BY created_at DESC
		LIMIT 1`, snapshotSelectCols)

	var snap domain.Snapshot
	err := s.pool.QueryRow(ctx, query, kind, key).
		Scan(&snap.ID, &snap.Kind, &snap.Key, &snap.Period, &snap.Payload, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Snapshot{}, domain.ErrNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("postgres: get latest snapshot %s/%s: %w", kind, key, err)
	}
	return snap, nil
}

// ListRecent returns the newest snapshots of a kind, newest first.
func (s *SnapshotStore) ListRecent(ctx context.Context, kind string, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM snapshots
		WHERE kind = $1
		ORDER BY created_at DESC
		LIMIT $2`, snapshotSelectCols)

	rows, err := s.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots %s: %w", kind, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots %s: %w", kind, err)
	}
	return snaps, nil
}

// DeleteBefore removes snapshots created before the cutoff and reports how
// many rows were deleted. Used by the retention sweep.
func (s *SnapshotStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete snapshots before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
