package roster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"dmrelay/internal/platform"
)

type fakeSource struct {
	guilds map[string]*platform.Guild
}

func (f *fakeSource) Guild(guildID string) (*platform.Guild, bool) {
	g, ok := f.guilds[guildID]
	return g, ok
}

type fakeStore struct {
	saved map[string][]string
	err   error
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, guildID string, memberIDs []string) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]string)
	}
	f.saved[guildID] = memberIDs
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSource() *fakeSource {
	return &fakeSource{guilds: map[string]*platform.Guild{
		"7": {
			ID: "7",
			Members: []platform.Member{
				{UserID: "42"},
				{UserID: "99"},
				{UserID: "7000"},
			},
		},
	}}
}

func TestEnumeratePreservesRosterOrder(t *testing.T) {
	t.Parallel()

	e := New(testSource(), nil, discardLogger())
	ids, err := e.Enumerate(context.Background(), "7")
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}

	want := []string{"42", "99", "7000"}
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestEnumerateUnknownGuild(t *testing.T) {
	t.Parallel()

	e := New(testSource(), nil, discardLogger())
	_, err := e.Enumerate(context.Background(), "404")
	if !errors.Is(err, ErrGuildNotFound) {
		t.Fatalf("expected ErrGuildNotFound, got %v", err)
	}
}

func TestEnumerateWritesSnapshot(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	e := New(testSource(), store, discardLogger())

	if _, err := e.Enumerate(context.Background(), "7"); err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
	if got := len(store.saved["7"]); got != 3 {
		t.Fatalf("snapshot has %d ids, want 3", got)
	}
}

func TestEnumerateSnapshotFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("disk full")}
	e := New(testSource(), store, discardLogger())

	ids, err := e.Enumerate(context.Background(), "7")
	if err != nil {
		t.Fatalf("enumerate should not fail on snapshot error, got %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
}
