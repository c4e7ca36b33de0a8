package warnings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitasrp/civitas/src/store"
)

func TestAddAssignsRefCode(t *testing.T) {
	s := NewStore(store.NewMemory().Warnings())

	w, err := s.Add(context.Background(), "g1", "u1", "mod1", "spam")
	require.NoError(t, err)
	assert.Len(t, w.RefCode, 8)
	assert.Equal(t, "spam", w.Reason)
	assert.Equal(t, "mod1", w.ModeratorID)
}

func TestListChronological(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	s := NewStore(store.NewMemory().Warnings()).WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	for _, reason := range []string{"first", "second", "third"} {
		_, err := s.Add(ctx, "g1", "u1", "mod1", reason)
		require.NoError(t, err)
	}
	_, err := s.Add(ctx, "g1", "other", "mod1", "unrelated")
	require.NoError(t, err)

	list, err := s.List(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Reason)
	assert.Equal(t, "third", list[2].Reason)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory().Warnings())

	for i := 0; i < 3; i++ {
		_, err := s.Add(ctx, "g1", "u1", "mod1", "x")
		require.NoError(t, err)
	}
	_, err := s.Add(ctx, "g2", "u1", "mod1", "other guild")
	require.NoError(t, err)

	n, err := s.ClearAll(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	list, err := s.List(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	// The other guild's record survives.
	list, err = s.List(ctx, "g2", "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err = s.ClearAll(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
