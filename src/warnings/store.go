// Package warnings keeps the append-only moderation log.
package warnings

import (
	"context"
	"time"

	"github.com/civitasrp/civitas/src/store"
	"github.com/civitasrp/civitas/src/types"
	"github.com/google/uuid"
)

type Store struct {
	repo store.WarningRepo
	now  func() time.Time
}

func NewStore(repo store.WarningRepo) *Store {
	return &Store{repo: repo, now: time.Now}
}

// WithClock fixes "now" for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Add appends a warning and returns it with its short reference code set.
func (s *Store) Add(ctx context.Context, guildID, userID, moderatorID, reason string) (*types.Warning, error) {
	w := &types.Warning{
		RefCode:     uuid.NewString()[:8],
		UserID:      userID,
		GuildID:     guildID,
		ModeratorID: moderatorID,
		Reason:      reason,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Add(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// List returns the user's warnings in chronological order.
func (s *Store) List(ctx context.Context, guildID, userID string) ([]types.Warning, error) {
	return s.repo.ListByUser(ctx, guildID, userID)
}

// ClearAll removes every warning for the user and returns how many went.
// Only reachable through the confirm-gated clear session.
func (s *Store) ClearAll(ctx context.Context, guildID, userID string) (int64, error) {
	return s.repo.DeleteAllByUser(ctx, guildID, userID)
}
