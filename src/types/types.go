package types

import "time"

// RolePermissions maps a Discord role ID to the capability names granted to it.
// Stored as a JSON column; empty map means no role grants anything.
type RolePermissions map[string][]string

// GuildConfig holds per-guild bot configuration. One row per guild, created
// lazily with defaults on first access.
type GuildConfig struct {
	GuildID         string          `gorm:"primaryKey;size:32"`
	Language        string          `gorm:"size:8;not null"`
	Prefix          string          `gorm:"size:16"`
	Country         string          `gorm:"size:4"`
	RolePermissions RolePermissions `gorm:"serializer:json"`
	LogChannelID    string          `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Identity is a user-authored roleplay identity record. At most one per
// (user, guild); enforced by the unique index.
type Identity struct {
	ID              uint64 `gorm:"primaryKey"`
	UserID          string `gorm:"size:32;not null;uniqueIndex:idx_identity_owner"`
	GuildID         string `gorm:"size:32;not null;uniqueIndex:idx_identity_owner"`
	FirstName       string `gorm:"size:64;not null"`
	SecondName      string `gorm:"size:64"`
	FirstLastName   string `gorm:"size:64;not null"`
	SecondLastName  string `gorm:"size:64"`
	BirthDate       string `gorm:"size:10;not null"` // DD/MM/YYYY
	Age             int    `gorm:"not null"`
	Gender          string `gorm:"size:16;not null"`
	Nationality     string `gorm:"size:64"`
	RobloxName      string `gorm:"size:64"`
	RobloxAvatarURL string `gorm:"size:255"`
	IDNumber        string `gorm:"size:32;not null"`
	CountryCode     string `gorm:"size:4;not null"`
	CreatedAt       time.Time
}

// Warning is an append-only moderation log entry. Many per (user, guild);
// deleted only in bulk through the confirm-gated clear flow.
type Warning struct {
	ID          uint64 `gorm:"primaryKey"`
	RefCode     string `gorm:"size:8;not null"` // short code shown to moderators
	UserID      string `gorm:"size:32;not null;index:idx_warning_target"`
	GuildID     string `gorm:"size:32;not null;index:idx_warning_target"`
	ModeratorID string `gorm:"size:32;not null"`
	Reason      string `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

// KissTally counts kisses from one user to another within a guild.
type KissTally struct {
	ID        uint64 `gorm:"primaryKey"`
	GuildID   string `gorm:"size:32;not null;uniqueIndex:idx_kiss_pair"`
	SenderID  string `gorm:"size:32;not null;uniqueIndex:idx_kiss_pair"`
	TargetID  string `gorm:"size:32;not null;uniqueIndex:idx_kiss_pair"`
	Count     uint32 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Setting is a process-level key/value row, read once at boot with env
// fallbacks (discord_token, guild-independent knobs).
type Setting struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:255"`
}
