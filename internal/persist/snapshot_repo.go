package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"toyworld/internal/world"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotInfo summarises a stored snapshot.
type SnapshotInfo struct {
	Name    string
	Step    int64
	Width   int32
	Height  int32
	Seed    int64
	SavedAt time.Time
}

// SnapshotRepo handles world snapshot rows.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save stores snap under name, replacing an older snapshot of that name.
func (r *SnapshotRepo) Save(ctx context.Context, name string, snap world.Snapshot) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO world_snapshots (name, step, width, height, seed, body, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (name) DO UPDATE
		 SET step = EXCLUDED.step, width = EXCLUDED.width, height = EXCLUDED.height,
		     seed = EXCLUDED.seed, body = EXCLUDED.body, saved_at = EXCLUDED.saved_at`,
		name, int64(snap.Step), snap.Width, snap.Height, snap.Seed, snap)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	r.db.log.Info("snapshot saved", zap.String("name", name), zap.Uint64("step", snap.Step), zap.Int("actors", len(snap.Actors)))
	return nil
}

// Load returns the snapshot stored under name.
func (r *SnapshotRepo) Load(ctx context.Context, name string) (world.Snapshot, error) {
	var snap world.Snapshot
	err := r.db.Pool.QueryRow(ctx,
		`SELECT body FROM world_snapshots WHERE name = $1`, name).Scan(&snap)
	if errors.Is(err, pgx.ErrNoRows) {
		return world.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return world.Snapshot{}, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return snap, nil
}

// List returns every stored snapshot, newest first.
func (r *SnapshotRepo) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, step, width, height, seed, saved_at
		 FROM world_snapshots ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		if err := rows.Scan(&s.Name, &s.Step, &s.Width, &s.Height, &s.Seed, &s.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the snapshot stored under name.
func (r *SnapshotRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM world_snapshots WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
