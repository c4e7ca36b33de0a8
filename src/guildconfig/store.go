// Package guildconfig caches per-guild configuration in front of the config
// repo. Reads degrade to defaults when the store is unreachable; writes go
// store-first and only refresh the cache after the store accepted them.
package guildconfig

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/types"
)

// DefaultLanguage is applied to guilds that never ran /config set.
const DefaultLanguage = "es"

// Languages is the closed set of locales a guild may select.
var Languages = []string{"es", "en", "pt"}

// ValidLanguage reports whether code is one of the supported locales.
func ValidLanguage(code string) bool {
	for _, l := range Languages {
		if l == code {
			return true
		}
	}
	return false
}

// Partial carries a configuration update; nil fields are left unchanged.
// A non-nil empty Prefix/Country/LogChannelID clears the value.
type Partial struct {
	Language        *string
	Country         *string
	Prefix          *string
	LogChannelID    *string
	RolePermissions *types.RolePermissions
}

type Store struct {
	repo  store.ConfigRepo
	mu    sync.RWMutex
	cache map[string]*types.GuildConfig
}

func New(repo store.ConfigRepo) *Store {
	return &Store{
		repo:  repo,
		cache: make(map[string]*types.GuildConfig),
	}
}

// Default returns the configuration a guild gets before anyone configures it.
func Default(guildID string) *types.GuildConfig {
	return &types.GuildConfig{
		GuildID:         guildID,
		Language:        DefaultLanguage,
		RolePermissions: types.RolePermissions{},
	}
}

// Load returns the guild's configuration, creating a default row on first
// access. It never fails: a broken store yields an uncached in-memory default
// so the next call retries persistence.
func (s *Store) Load(ctx context.Context, guildID string) *types.GuildConfig {
	s.mu.RLock()
	if cfg, ok := s.cache[guildID]; ok {
		s.mu.RUnlock()
		return snapshot(cfg)
	}
	s.mu.RUnlock()

	cfg, err := s.repo.Get(ctx, guildID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		cfg = Default(guildID)
		if err := s.repo.Upsert(ctx, cfg); err != nil {
			log.Printf("guildconfig: persist defaults for %s: %v", guildID, err)
			return Default(guildID)
		}
	default:
		log.Printf("guildconfig: load %s: %v", guildID, err)
		return Default(guildID)
	}

	if cfg.RolePermissions == nil {
		cfg.RolePermissions = types.RolePermissions{}
	}

	s.mu.Lock()
	s.cache[guildID] = cfg
	s.mu.Unlock()
	return snapshot(cfg)
}

// Save merges the partial into the persisted configuration and refreshes the
// cache with the merged result. On persistence failure the previous cached
// value stays intact and the error is returned.
func (s *Store) Save(ctx context.Context, guildID string, p Partial) (*types.GuildConfig, error) {
	current := s.Load(ctx, guildID)
	merged := apply(current, p)

	if err := s.repo.Upsert(ctx, merged); err != nil {
		return nil, fmt.Errorf("guildconfig: save %s: %w", guildID, err)
	}

	s.mu.Lock()
	s.cache[guildID] = snapshot(merged)
	s.mu.Unlock()
	return merged, nil
}

// Invalidate drops the cache entry so the next Load hits persistence.
func (s *Store) Invalidate(guildID string) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}

// Delete removes the persisted configuration and the cache entry. Used by the
// guild-removal flow only.
func (s *Store) Delete(ctx context.Context, guildID string) error {
	if err := s.repo.Delete(ctx, guildID); err != nil {
		return fmt.Errorf("guildconfig: delete %s: %w", guildID, err)
	}
	s.Invalidate(guildID)
	return nil
}

func apply(cfg *types.GuildConfig, p Partial) *types.GuildConfig {
	out := snapshot(cfg)
	if p.Language != nil {
		out.Language = *p.Language
	}
	if p.Country != nil {
		out.Country = *p.Country
	}
	if p.Prefix != nil {
		out.Prefix = *p.Prefix
	}
	if p.LogChannelID != nil {
		out.LogChannelID = *p.LogChannelID
	}
	if p.RolePermissions != nil {
		perms := types.RolePermissions{}
		for role, caps := range *p.RolePermissions {
			perms[role] = append([]string(nil), caps...)
		}
		out.RolePermissions = perms
	}
	return out
}

// snapshot deep-copies so callers can never mutate the cached value in place.
func snapshot(cfg *types.GuildConfig) *types.GuildConfig {
	out := *cfg
	perms := types.RolePermissions{}
	for role, caps := range cfg.RolePermissions {
		perms[role] = append([]string(nil), caps...)
	}
	out.RolePermissions = perms
	return &out
}
