package discord

import "github.com/bwmarrin/discordgo"

// isAdmin: owner del guild o permiso Administrator por roles.
func (r *Router) isAdmin(guildID, userID string, roleIDs []string) bool {
	if g, _ := r.s.State.Guild(guildID); g != nil && g.OwnerID == userID {
		return true
	}

	roles := r.guildRoles(guildID)
	var perms int64
	for _, rid := range roleIDs {
		if ro, ok := roles[rid]; ok {
			perms |= ro.Permissions
			if perms&discordgo.PermissionAdministrator != 0 {
				return true
			}
		}
	}
	return false
}

func (r *Router) hasTeamRole(roleIDs []string) bool {
	if len(r.teamRoleIDs) == 0 {
		return false
	}
	has := make(map[string]struct{}, len(roleIDs))
	for _, rid := range roleIDs {
		has[rid] = struct{}{}
	}
	for _, want := range r.teamRoleIDs {
		if _, ok := has[want]; ok {
			return true
		}
	}
	return false
}

func (r *Router) guildRoles(guildID string) map[string]*discordgo.Role {
	out := map[string]*discordgo.Role{}
	if g, _ := r.s.State.Guild(guildID); g != nil {
		for _, ro := range g.Roles {
			out[ro.ID] = ro
		}
		return out
	}
	roles, err := r.s.GuildRoles(guildID)
	if err != nil {
		return out
	}
	for _, ro := range roles {
		out[ro.ID] = ro
	}
	return out
}
