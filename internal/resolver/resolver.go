package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"dmrelay/internal/platform"
)

//go:generate mockgen -destination=mocks/mock_session.go -package=mocks dmrelay/internal/resolver Session

// Session is the slice of the platform client the resolver depends on.
type Session interface {
	Guild(guildID string) (*platform.Guild, bool)
	FetchGuild(ctx context.Context, guildID string) (*platform.Guild, error)
	FetchMember(ctx context.Context, guildID, userID string) (*platform.Member, error)
}

var (
	// ErrGuildNotFound means the guild is neither cached nor fetchable.
	ErrGuildNotFound = errors.New("resolver: guild not found")

	// ErrMemberNotFound means the user is not a member of the guild.
	ErrMemberNotFound = errors.New("resolver: member not found")
)

// Source records where a resolution came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceFetch Source = "fetch"
)

// Resolution is a successfully resolved member plus its guild context.
type Resolution struct {
	Guild  *platform.Guild
	Member *platform.Member
	Source Source
}

// Resolver resolves guild members, consulting a process-wide cache before
// the remote platform. Cached entries never expire and are never
// invalidated; membership churn is rare relative to request volume, so
// staleness is an accepted tradeoff.
type Resolver struct {
	session Session
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[cacheKey]*platform.Member
}

type cacheKey struct {
	guildID string
	userID  string
}

func New(session Session, logger *slog.Logger) *Resolver {
	return &Resolver{
		session: session,
		logger:  logger,
		cache:   make(map[cacheKey]*platform.Member),
	}
}

// Resolve produces the member record for (guildID, userID).
//
// The guild comes from the session cache, with a single remote fetch as
// fallback; a miss there is terminal. The member comes from the local cache
// or the guild's cached roster, with exactly one remote fetch as fallback.
// No path retries: a remote not-found maps to ErrMemberNotFound and any
// other remote failure is returned as-is, terminal to this resolution.
func (r *Resolver) Resolve(ctx context.Context, guildID, userID string) (*Resolution, error) {
	guild, ok := r.session.Guild(guildID)
	if !ok {
		fetched, err := r.session.FetchGuild(ctx, guildID)
		if err != nil || fetched == nil {
			if err != nil && !errors.Is(err, platform.ErrNotFound) {
				r.logger.Warn("guild fetch failed", "guild_id", guildID, "error", err)
			}
			return nil, ErrGuildNotFound
		}
		guild = fetched
	}

	key := cacheKey{guildID: guildID, userID: userID}

	r.mu.RLock()
	member, hit := r.cache[key]
	r.mu.RUnlock()
	if hit {
		return &Resolution{Guild: guild, Member: member, Source: SourceCache}, nil
	}

	// The session's roster cache counts as a cache hit: no network call.
	if member, ok := guild.Member(userID); ok {
		r.store(key, member)
		return &Resolution{Guild: guild, Member: member, Source: SourceCache}, nil
	}

	member, err := r.session.FetchMember(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("fetch member %s in guild %s: %w", userID, guildID, err)
	}

	r.store(key, member)
	return &Resolution{Guild: guild, Member: member, Source: SourceFetch}, nil
}

// CacheSize reports the number of cached member entries.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Resolver) store(key cacheKey, m *platform.Member) {
	r.mu.Lock()
	r.cache[key] = m
	r.mu.Unlock()
}
