package guildconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/types"
)

func TestLoadCreatesDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := New(mem.Configs())

	cfg := s.Load(ctx, "g1")
	require.Equal(t, DefaultLanguage, cfg.Language)

	// The default row must now exist in the backing store.
	persisted, err := mem.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, persisted.Language)

	again := s.Load(ctx, "g1")
	assert.Equal(t, cfg.Language, again.Language)
}

func TestLoadReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory().Configs())

	first := s.Load(ctx, "g1")
	first.Language = "xx"
	first.RolePermissions = types.RolePermissions{"r1": {"ban"}}

	second := s.Load(ctx, "g1")
	assert.Equal(t, DefaultLanguage, second.Language)
	assert.Empty(t, second.RolePermissions)
}

func TestLoadDegradedOnReadFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := New(mem.Configs())

	mem.FailReads = errors.New("connection refused")
	cfg := s.Load(ctx, "g1")
	assert.Equal(t, DefaultLanguage, cfg.Language)

	// Degraded default must not be cached: once the store recovers, Load
	// goes back to it and persists the real default row.
	mem.FailReads = nil
	_, err := mem.Get(ctx, "g1")
	require.ErrorIs(t, err, store.ErrNotFound)

	cfg = s.Load(ctx, "g1")
	require.Equal(t, DefaultLanguage, cfg.Language)
	_, err = mem.Get(ctx, "g1")
	require.NoError(t, err)
}

func TestSaveMergesPartial(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory().Configs())

	ch := "123456"
	saved, err := s.Save(ctx, "g1", Partial{LogChannelID: &ch})
	require.NoError(t, err)
	assert.Equal(t, "123456", saved.LogChannelID)
	assert.Equal(t, DefaultLanguage, saved.Language)

	lang := "en"
	saved, err = s.Save(ctx, "g1", Partial{Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "en", saved.Language)
	assert.Equal(t, "123456", saved.LogChannelID, "unrelated fields must survive the merge")
}

func TestSaveFailureLeavesCacheIntact(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := New(mem.Configs())

	ch := "123456"
	_, err := s.Save(ctx, "g1", Partial{LogChannelID: &ch})
	require.NoError(t, err)

	mem.FailWrites = errors.New("deadlock")
	other := "999999"
	_, err = s.Save(ctx, "g1", Partial{LogChannelID: &other})
	require.Error(t, err)

	cfg := s.Load(ctx, "g1")
	assert.Equal(t, "123456", cfg.LogChannelID, "failed save must not poison the cache")
}

func TestSaveRolePermissions(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory().Configs())

	rp := types.RolePermissions{"role1": {"warn", "kick"}}
	saved, err := s.Save(ctx, "g1", Partial{RolePermissions: &rp})
	require.NoError(t, err)
	assert.Equal(t, []string{"warn", "kick"}, saved.RolePermissions["role1"])

	// Mutating the caller's map after the save must not leak into the cache.
	rp["role1"][0] = "ban"
	cfg := s.Load(ctx, "g1")
	assert.Equal(t, "warn", cfg.RolePermissions["role1"][0])
}

func TestDeleteRemovesRowAndCache(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := New(mem.Configs())

	lang := "en"
	_, err := s.Save(ctx, "g1", Partial{Language: &lang})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "g1"))
	_, err = mem.Get(ctx, "g1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// A fresh Load starts over from defaults.
	cfg := s.Load(ctx, "g1")
	assert.Equal(t, DefaultLanguage, cfg.Language)
}

func TestInvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := New(mem.Configs())

	s.Load(ctx, "g1")
	require.NoError(t, mem.Upsert(ctx, &types.GuildConfig{GuildID: "g1", Language: "pt"}))

	assert.Equal(t, DefaultLanguage, s.Load(ctx, "g1").Language, "cache still serves the old row")
	s.Invalidate("g1")
	assert.Equal(t, "pt", s.Load(ctx, "g1").Language)
}

func TestValidLanguage(t *testing.T) {
	for _, l := range Languages {
		assert.True(t, ValidLanguage(l), l)
	}
	assert.False(t, ValidLanguage("fr"))
	assert.False(t, ValidLanguage("ES"), "codes are matched verbatim")
	assert.False(t, ValidLanguage(""))
}
