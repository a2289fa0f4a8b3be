// Package roster enumerates guild members from the connected session.
package roster

import (
	"context"
	"errors"
	"log/slog"

	"dmrelay/internal/platform"
)

// ErrGuildNotFound means the guild is not in the session cache. Enumeration
// deliberately has no remote fallback: it is only expected once the session
// has synchronized its guilds.
var ErrGuildNotFound = errors.New("roster: guild not found")

// GuildSource is the slice of the platform client the enumerator depends on.
type GuildSource interface {
	Guild(guildID string) (*platform.Guild, bool)
}

// SnapshotStore persists enumeration results.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, guildID string, memberIDs []string) error
}

// Enumerator lists the members of a guild. Unlike delivery dispatch it is
// synchronous: the HTTP response waits for it.
type Enumerator struct {
	source GuildSource
	store  SnapshotStore
	logger *slog.Logger
}

// New creates an Enumerator. store may be nil to disable snapshots.
func New(source GuildSource, store SnapshotStore, logger *slog.Logger) *Enumerator {
	return &Enumerator{source: source, store: store, logger: logger}
}

// Enumerate returns the guild's member ids in roster iteration order. The
// order is not guaranteed stable across calls. Each successful enumeration
// is also persisted as a snapshot, best-effort: a failed write is logged
// and does not fail the enumeration.
func (e *Enumerator) Enumerate(ctx context.Context, guildID string) ([]string, error) {
	guild, ok := e.source.Guild(guildID)
	if !ok {
		return nil, ErrGuildNotFound
	}

	ids := guild.MemberIDs()

	if e.store != nil {
		if err := e.store.SaveSnapshot(ctx, guildID, ids); err != nil {
			e.logger.Warn("roster snapshot failed", "guild_id", guildID, "error", err)
		}
	}

	e.logger.Debug("roster enumerated", "guild_id", guildID, "members", len(ids))
	return ids, nil
}
