package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civitasrp/civitas/src/types"
)

func TestOwnerAndAdminGetUniversalSet(t *testing.T) {
	cfg := &types.GuildConfig{RolePermissions: types.RolePermissions{}}

	owner := Actor{ID: "u1", IsGuildOwner: true}
	admin := Actor{ID: "u2", IsAdministrator: true}

	for _, c := range All {
		assert.True(t, Resolve(owner, cfg).Has(c), "owner should hold %s", c)
		assert.True(t, Resolve(admin, cfg).Has(c), "admin should hold %s", c)
	}
}

func TestResolveUnionsRoleCapabilities(t *testing.T) {
	cfg := &types.GuildConfig{RolePermissions: types.RolePermissions{
		"mod":    {"warn", "timeout"},
		"helper": {"use_dni"},
		"unused": {"ban"},
	}}

	actor := Actor{ID: "u1", RoleIDs: []string{"mod", "helper"}}
	set := Resolve(actor, cfg)

	assert.True(t, set.Has(CapWarn))
	assert.True(t, set.Has(CapTimeout))
	assert.True(t, set.Has(CapUseDNI))
	assert.False(t, set.Has(CapBan), "capabilities from roles the actor lacks must not leak")
	assert.False(t, set.Has(CapKick))
}

func TestResolveUnknownRolesContributeNothing(t *testing.T) {
	cfg := &types.GuildConfig{RolePermissions: types.RolePermissions{}}
	actor := Actor{ID: "u1", RoleIDs: []string{"ghost"}}
	assert.Empty(t, Resolve(actor, cfg))
}

func TestResolveNilConfig(t *testing.T) {
	actor := Actor{ID: "u1", RoleIDs: []string{"mod"}}
	assert.Empty(t, Resolve(actor, nil))
	assert.True(t, Resolve(Actor{IsGuildOwner: true}, nil).Has(CapBan))
}

func TestHasProjection(t *testing.T) {
	cfg := &types.GuildConfig{RolePermissions: types.RolePermissions{"mod": {"warn"}}}
	actor := Actor{ID: "u1", RoleIDs: []string{"mod"}}

	assert.True(t, Has(actor, cfg, CapWarn))
	assert.False(t, Has(actor, cfg, CapBan))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("warn"))
	assert.True(t, Valid("use_dni"))
	assert.False(t, Valid("sudo"))
	assert.False(t, Valid(""))
}
