// Package gate decides whether a resolved member may receive a relayed
// message, based on a single required role.
package gate

import "dmrelay/internal/platform"

// Permits reports whether member holds the guild role named requiredRole.
//
// The role name match is case-sensitive and exact. A role name that does
// not exist in the guild denies for everyone; that is a configuration
// fact, not a per-member condition. Holding the named role is necessary
// and sufficient: there is no hierarchy or inheritance.
func Permits(guild *platform.Guild, member *platform.Member, requiredRole string) bool {
	if guild == nil || member == nil {
		return false
	}

	for _, role := range guild.Roles {
		if role.Name == requiredRole {
			return member.HasRole(role.ID)
		}
	}
	return false
}
