// Package permissions derives an actor's effective capability set for a guild
// from the guild's role→capability configuration. Resolution is recomputed on
// every check; role membership and configuration both change between checks,
// so nothing here is cached per actor.
package permissions

import "github.com/civitasrp/civitas/src/types"

// Capability is a named permission bit grantable per role.
type Capability string

const (
	CapBan         Capability = "ban"
	CapKick        Capability = "kick"
	CapTimeout     Capability = "timeout"
	CapPurge       Capability = "purge"
	CapWarn        Capability = "warn"
	CapUseDNI      Capability = "use_dni"
	CapModifyDNI   Capability = "modify_dni"
	CapDeleteDNI   Capability = "delete_dni"
	CapEmbed       Capability = "embed"
	CapKiss        Capability = "kiss"
	CapSendMessage Capability = "send_message"
)

// All lists every capability the bot knows about, in menu order.
var All = []Capability{
	CapUseDNI, CapDeleteDNI, CapModifyDNI, CapEmbed, CapKiss,
	CapWarn, CapTimeout, CapKick, CapPurge, CapBan, CapSendMessage,
}

// Set is an effective capability set.
type Set map[Capability]bool

// Has reports whether the set contains the capability.
func (s Set) Has(c Capability) bool { return s[c] }

// Universal returns the set granted to guild owners and platform admins.
func Universal() Set {
	out := make(Set, len(All))
	for _, c := range All {
		out[c] = true
	}
	return out
}

// Actor is the user attempting a command or session gesture, as seen by the
// transport layer at check time.
type Actor struct {
	ID              string
	RoleIDs         []string
	IsGuildOwner    bool
	IsAdministrator bool // platform-native administrator permission
}

// Resolve computes the actor's effective capability set under cfg. The guild
// owner and platform administrators always hold the universal set; everyone
// else gets the union of the capabilities attached to their current roles.
// Roles absent from the configuration contribute nothing.
func Resolve(actor Actor, cfg *types.GuildConfig) Set {
	if actor.IsGuildOwner || actor.IsAdministrator {
		return Universal()
	}
	out := Set{}
	if cfg == nil {
		return out
	}
	for _, roleID := range actor.RoleIDs {
		for _, name := range cfg.RolePermissions[roleID] {
			out[Capability(name)] = true
		}
	}
	return out
}

// Has is the single-flag projection of Resolve.
func Has(actor Actor, cfg *types.GuildConfig, c Capability) bool {
	return Resolve(actor, cfg).Has(c)
}

// Valid reports whether name is a known capability, for validating the
// permission-picker gesture values.
func Valid(name string) bool {
	for _, c := range All {
		if string(c) == name {
			return true
		}
	}
	return false
}
