// Package store defines the document-store gateway the bot's components
// persist through. The MySQL implementation backs production; the Memory
// implementation backs tests and degraded paths.
package store

import (
	"context"
	"errors"

	"github.com/civitasrp/civitas/src/types"
)

var (
	// ErrNotFound is returned by lookups and mutations on absent entities.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyExists is returned when creating a singleton that exists.
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrUnavailable wraps persistence-engine failures.
	ErrUnavailable = errors.New("store: unavailable")
)

// IdentityPatch carries a partial identity update; nil fields are untouched.
type IdentityPatch struct {
	FirstName       *string
	SecondName      *string
	FirstLastName   *string
	SecondLastName  *string
	BirthDate       *string
	Age             *int
	Gender          *string
	Nationality     *string
	RobloxName      *string
	RobloxAvatarURL *string
}

// ConfigRepo persists per-guild configuration, one row per guild.
type ConfigRepo interface {
	Get(ctx context.Context, guildID string) (*types.GuildConfig, error)
	Upsert(ctx context.Context, cfg *types.GuildConfig) error
	Delete(ctx context.Context, guildID string) error
}

// IdentityRepo persists singleton-per-(user,guild) identity records.
type IdentityRepo interface {
	Get(ctx context.Context, guildID, userID string) (*types.Identity, error)
	Create(ctx context.Context, rec *types.Identity) error
	Update(ctx context.Context, guildID, userID string, patch IdentityPatch) error
	Delete(ctx context.Context, guildID, userID string) error
}

// WarningRepo persists the append-only moderation log.
type WarningRepo interface {
	Add(ctx context.Context, w *types.Warning) error
	ListByUser(ctx context.Context, guildID, userID string) ([]types.Warning, error)
	DeleteAllByUser(ctx context.Context, guildID, userID string) (int64, error)
}

// KissRepo persists kiss tallies keyed by (guild, sender, target).
type KissRepo interface {
	Increment(ctx context.Context, guildID, senderID, targetID string) (uint32, error)
}

func (p IdentityPatch) fields() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("first_name", p.FirstName)
	set("second_name", p.SecondName)
	set("first_last_name", p.FirstLastName)
	set("second_last_name", p.SecondLastName)
	set("birth_date", p.BirthDate)
	set("gender", p.Gender)
	set("nationality", p.Nationality)
	set("roblox_name", p.RobloxName)
	set("roblox_avatar_url", p.RobloxAvatarURL)
	if p.Age != nil {
		out["age"] = *p.Age
	}
	return out
}
