package roster

import (
	"context"
	"path/filepath"
	"testing"

	"dmrelay/internal/storage"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.SaveSnapshot(ctx, "7", []string{"42", "99"}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := store.SaveSnapshot(ctx, "7", []string{"42", "99", "7000"}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	snap, err := store.LatestSnapshot(ctx, "7")
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if snap == nil {
		t.Fatalf("expected a snapshot")
	}
	if len(snap.MemberIDs) != 3 {
		t.Fatalf("latest snapshot has %d ids, want 3", len(snap.MemberIDs))
	}
	if snap.TakenAt.IsZero() {
		t.Fatalf("expected taken_at to be set")
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	store := testStore(t)

	snap, err := store.LatestSnapshot(context.Background(), "missing")
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot for unknown guild")
	}
}

func TestSaveSnapshotRequiresGuildID(t *testing.T) {
	store := testStore(t)

	if err := store.SaveSnapshot(context.Background(), "", nil); err == nil {
		t.Fatalf("expected error for empty guild id")
	}
}
