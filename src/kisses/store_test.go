package kisses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitasrp/civitas/src/store"
)

func TestKissCountsPerDirectedPair(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory().Kisses())

	for want := uint32(1); want <= 3; want++ {
		got, err := s.Kiss(ctx, "g1", "a", "b")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// The reverse direction and other guilds tally separately.
	got, err := s.Kiss(ctx, "g1", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got)

	got, err = s.Kiss(ctx, "g2", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got)
}
