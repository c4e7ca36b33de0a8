package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/civitasrp/civitas/src/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQL implements every repo interface on one gorm handle.
type MySQL struct {
	db *gorm.DB
}

func NewMySQL(db *gorm.DB) *MySQL {
	return &MySQL{db: db}
}

func (m *MySQL) Get(ctx context.Context, guildID string) (*types.GuildConfig, error) {
	var cfg types.GuildConfig
	err := m.db.WithContext(ctx).First(&cfg, "guild_id = ?", guildID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &cfg, nil
}

func (m *MySQL) Upsert(ctx context.Context, cfg *types.GuildConfig) error {
	err := m.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(cfg).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (m *MySQL) Delete(ctx context.Context, guildID string) error {
	err := m.db.WithContext(ctx).Delete(&types.GuildConfig{}, "guild_id = ?", guildID).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (m *MySQL) GetIdentity(ctx context.Context, guildID, userID string) (*types.Identity, error) {
	var rec types.Identity
	err := m.db.WithContext(ctx).First(&rec, "guild_id = ? AND user_id = ?", guildID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &rec, nil
}

func (m *MySQL) CreateIdentity(ctx context.Context, rec *types.Identity) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&types.Identity{}).
			Where("guild_id = ? AND user_id = ?", rec.GuildID, rec.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	})
	return err
}

func (m *MySQL) UpdateIdentity(ctx context.Context, guildID, userID string, patch IdentityPatch) error {
	fields := patch.fields()
	if len(fields) == 0 {
		return nil
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&types.Identity{}).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		err := tx.Model(&types.Identity{}).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Updates(fields).Error
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	})
}

func (m *MySQL) DeleteIdentity(ctx context.Context, guildID, userID string) error {
	res := m.db.WithContext(ctx).Delete(&types.Identity{}, "guild_id = ? AND user_id = ?", guildID, userID)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MySQL) Add(ctx context.Context, w *types.Warning) error {
	if err := m.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (m *MySQL) ListByUser(ctx context.Context, guildID, userID string) ([]types.Warning, error) {
	var out []types.Warning
	err := m.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (m *MySQL) DeleteAllByUser(ctx context.Context, guildID, userID string) (int64, error) {
	res := m.db.WithContext(ctx).Delete(&types.Warning{}, "guild_id = ? AND user_id = ?", guildID, userID)
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}

func (m *MySQL) Increment(ctx context.Context, guildID, senderID, targetID string) (uint32, error) {
	var count uint32
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tally := types.KissTally{GuildID: guildID, SenderID: senderID, TargetID: targetID}
		if err := tx.Where(&tally).FirstOrCreate(&tally).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if err := tx.Model(&types.KissTally{}).
			Where("id = ?", tally.ID).
			UpdateColumn("count", gorm.Expr("count + 1")).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		count = tally.Count + 1
		return nil
	})
	return count, err
}

// Repo views keep the component wiring typed to one concern each.

type mysqlIdentities struct{ *MySQL }

func (m mysqlIdentities) Get(ctx context.Context, guildID, userID string) (*types.Identity, error) {
	return m.GetIdentity(ctx, guildID, userID)
}
func (m mysqlIdentities) Create(ctx context.Context, rec *types.Identity) error {
	return m.CreateIdentity(ctx, rec)
}
func (m mysqlIdentities) Update(ctx context.Context, guildID, userID string, patch IdentityPatch) error {
	return m.UpdateIdentity(ctx, guildID, userID, patch)
}
func (m mysqlIdentities) Delete(ctx context.Context, guildID, userID string) error {
	return m.DeleteIdentity(ctx, guildID, userID)
}

// Identities returns the identity-repo view.
func (m *MySQL) Identities() IdentityRepo { return mysqlIdentities{m} }

// Configs returns the config-repo view.
func (m *MySQL) Configs() ConfigRepo { return m }

// Warnings returns the warning-repo view.
func (m *MySQL) Warnings() WarningRepo { return m }

// Kisses returns the kiss-repo view.
func (m *MySQL) Kisses() KissRepo { return m }
