package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a persisted point-in-time view of a guild roster.
type Snapshot struct {
	ID        string
	GuildID   string
	MemberIDs []string
	TakenAt   time.Time
}

// Store persists roster snapshots taken on each enumeration.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot records an enumeration result.
func (s *Store) SaveSnapshot(ctx context.Context, guildID string, memberIDs []string) error {
	if guildID == "" {
		return fmt.Errorf("guildID is empty")
	}

	ids, err := json.Marshal(memberIDs)
	if err != nil {
		return fmt.Errorf("encode member ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO roster_snapshot(id, guild_id, member_count, member_ids, taken_at)
VALUES(?, ?, ?, ?, ?);
`, uuid.NewString(), guildID, len(memberIDs), string(ids), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert roster snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for a guild, or (nil, nil)
// when none exists.
func (s *Store) LatestSnapshot(ctx context.Context, guildID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, guild_id, member_ids, taken_at
FROM roster_snapshot
WHERE guild_id = ?
ORDER BY taken_at DESC, rowid DESC
LIMIT 1;
`, guildID)

	var (
		snap    Snapshot
		idsJSON string
		takenAt string
	)
	err := row.Scan(&snap.ID, &snap.GuildID, &idsJSON, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load roster snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &snap.MemberIDs); err != nil {
		return nil, fmt.Errorf("decode member ids: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, takenAt); err == nil {
		snap.TakenAt = t
	}
	return &snap, nil
}
