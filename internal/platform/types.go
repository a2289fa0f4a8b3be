package platform

import "errors"

// Typed errors returned by the remote platform API. Callers classify
// failures with errors.Is; anything else is a transport-level failure.
var (
	// ErrNotFound means the requested guild or member does not exist.
	ErrNotFound = errors.New("platform: not found")

	// ErrForbidden means the platform refused the operation, e.g. the
	// recipient does not accept direct messages from this bot.
	ErrForbidden = errors.New("platform: forbidden")

	// ErrUnauthorized means the session token was rejected.
	ErrUnauthorized = errors.New("platform: unauthorized")
)

// Role is a named permission tag assignable to members within a guild.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is a user's record within a specific guild.
type Member struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	RoleIDs     []string `json:"role_ids"`
}

// HasRole reports whether the member holds the role with the given id.
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Guild is a community on the remote chat platform. The roster may be
// partial; members missing from it can still exist remotely.
type Guild struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Roles   []Role   `json:"roles"`
	Members []Member `json:"members"`
}

// Member looks up a member in the guild's cached roster.
func (g *Guild) Member(userID string) (*Member, bool) {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i], true
		}
	}
	return nil, false
}

// MemberIDs returns the roster's user ids in iteration order.
func (g *Guild) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for i := range g.Members {
		ids = append(ids, g.Members[i].UserID)
	}
	return ids
}
