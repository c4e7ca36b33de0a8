package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/civitasrp/civitas/src/types"
)

// Memory is an in-process implementation of every repo interface. It backs
// package tests and doubles as a scratch store for local runs without MySQL.
// FailReads/FailWrites inject persistence failures.
type Memory struct {
	mu         sync.Mutex
	configs    map[string]types.GuildConfig
	identities map[identityKey]types.Identity
	warnings   []types.Warning
	tallies    map[kissKey]uint32
	nextID     uint64

	FailReads  error
	FailWrites error
}

type identityKey struct{ guildID, userID string }
type kissKey struct{ guildID, senderID, targetID string }

func NewMemory() *Memory {
	return &Memory{
		configs:    make(map[string]types.GuildConfig),
		identities: make(map[identityKey]types.Identity),
		tallies:    make(map[kissKey]uint32),
	}
}

func (m *Memory) Get(ctx context.Context, guildID string) (*types.GuildConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	cfg, ok := m.configs[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cfg
	out.RolePermissions = cloneRolePermissions(cfg.RolePermissions)
	return &out, nil
}

func (m *Memory) Upsert(ctx context.Context, cfg *types.GuildConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	stored := *cfg
	stored.RolePermissions = cloneRolePermissions(cfg.RolePermissions)
	stored.UpdatedAt = time.Now()
	m.configs[cfg.GuildID] = stored
	return nil
}

func (m *Memory) Delete(ctx context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	delete(m.configs, guildID)
	return nil
}

func (m *Memory) GetIdentity(ctx context.Context, guildID, userID string) (*types.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	rec, ok := m.identities[identityKey{guildID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	return &out, nil
}

func (m *Memory) CreateIdentity(ctx context.Context, rec *types.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	key := identityKey{rec.GuildID, rec.UserID}
	if _, ok := m.identities[key]; ok {
		return ErrAlreadyExists
	}
	m.nextID++
	rec.ID = m.nextID
	m.identities[key] = *rec
	return nil
}

func (m *Memory) UpdateIdentity(ctx context.Context, guildID, userID string, patch IdentityPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	key := identityKey{guildID, userID}
	rec, ok := m.identities[key]
	if !ok {
		return ErrNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&rec.FirstName, patch.FirstName)
	apply(&rec.SecondName, patch.SecondName)
	apply(&rec.FirstLastName, patch.FirstLastName)
	apply(&rec.SecondLastName, patch.SecondLastName)
	apply(&rec.BirthDate, patch.BirthDate)
	apply(&rec.Gender, patch.Gender)
	apply(&rec.Nationality, patch.Nationality)
	apply(&rec.RobloxName, patch.RobloxName)
	apply(&rec.RobloxAvatarURL, patch.RobloxAvatarURL)
	if patch.Age != nil {
		rec.Age = *patch.Age
	}
	m.identities[key] = rec
	return nil
}

func (m *Memory) DeleteIdentity(ctx context.Context, guildID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	key := identityKey{guildID, userID}
	if _, ok := m.identities[key]; !ok {
		return ErrNotFound
	}
	delete(m.identities, key)
	return nil
}

func (m *Memory) Add(ctx context.Context, w *types.Warning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.nextID++
	w.ID = m.nextID
	m.warnings = append(m.warnings, *w)
	return nil
}

func (m *Memory) ListByUser(ctx context.Context, guildID, userID string) ([]types.Warning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	var out []types.Warning
	for _, w := range m.warnings {
		if w.GuildID == guildID && w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteAllByUser(ctx context.Context, guildID, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return 0, m.FailWrites
	}
	kept := m.warnings[:0]
	var removed int64
	for _, w := range m.warnings {
		if w.GuildID == guildID && w.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	m.warnings = kept
	return removed, nil
}

func (m *Memory) Increment(ctx context.Context, guildID, senderID, targetID string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return 0, m.FailWrites
	}
	key := kissKey{guildID, senderID, targetID}
	m.tallies[key]++
	return m.tallies[key], nil
}

type memoryIdentities struct{ *Memory }

func (m memoryIdentities) Get(ctx context.Context, guildID, userID string) (*types.Identity, error) {
	return m.GetIdentity(ctx, guildID, userID)
}
func (m memoryIdentities) Create(ctx context.Context, rec *types.Identity) error {
	return m.CreateIdentity(ctx, rec)
}
func (m memoryIdentities) Update(ctx context.Context, guildID, userID string, patch IdentityPatch) error {
	return m.UpdateIdentity(ctx, guildID, userID, patch)
}
func (m memoryIdentities) Delete(ctx context.Context, guildID, userID string) error {
	return m.DeleteIdentity(ctx, guildID, userID)
}

// Identities returns the identity-repo view.
func (m *Memory) Identities() IdentityRepo { return memoryIdentities{m} }

// Configs returns the config-repo view.
func (m *Memory) Configs() ConfigRepo { return m }

// Warnings returns the warning-repo view.
func (m *Memory) Warnings() WarningRepo { return m }

// Kisses returns the kiss-repo view.
func (m *Memory) Kisses() KissRepo { return m }

func cloneRolePermissions(in types.RolePermissions) types.RolePermissions {
	out := types.RolePermissions{}
	for role, caps := range in {
		out[role] = append([]string(nil), caps...)
	}
	return out
}
