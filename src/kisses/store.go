// Package kisses tallies kisses between user pairs within a guild.
package kisses

import (
	"context"

	"github.com/civitasrp/civitas/src/store"
)

type Store struct {
	repo store.KissRepo
}

func NewStore(repo store.KissRepo) *Store {
	return &Store{repo: repo}
}

// Kiss increments the sender→target tally and returns the running count.
// The first kiss for a pair creates the row (upsert semantics).
func (s *Store) Kiss(ctx context.Context, guildID, senderID, targetID string) (uint32, error) {
	return s.repo.Increment(ctx, guildID, senderID, targetID)
}
