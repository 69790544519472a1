package persist

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"toyworld/internal/atlas"
	"toyworld/internal/config"
	"toyworld/internal/world"
)

// openTestDB connects to TOYWORLD_TEST_DSN or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TOYWORLD_TEST_DSN")
	if dsn == "" {
		t.Skip("TOYWORLD_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2, ConnMaxLifetime: time.Minute}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	if err := RunMigrations(ctx, db.Pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepo(db)

	w := world.New(world.Config{Width: 6, Height: 6, Seed: 11}, nil, nil)
	if err := w.Fill("floor", atlas.Background); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := w.Place("fireplace_burning", atlas.OnGroundInteractable, 2, 2); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := w.Run(5); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap, err := w.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	name := "persist-test-" + t.Name()
	t.Cleanup(func() { _ = repo.Delete(ctx, name) })
	if err := repo.Save(ctx, name, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx, name)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("loaded snapshot differs:\n%+v\n%+v", got, snap)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, info := range list {
		if info.Name == name && info.Step == 5 {
			found = true
		}
	}
	if !found {
		t.Fatalf("snapshot %s missing from list", name)
	}
}

func TestLoadMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := NewSnapshotRepo(db).Load(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
