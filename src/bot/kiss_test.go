package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitasrp/civitas/src/kisses"
	"github.com/civitasrp/civitas/src/session"
	"github.com/civitasrp/civitas/src/store"
)

func newKissTestBot() *Bot {
	mem := store.NewMemory()
	return &Bot{
		kisses:     kisses.NewStore(mem.Kisses()),
		sessions:   session.NewManager(),
		kissRounds: make(map[string]*kissRound),
		ctx:        context.Background(),
	}
}

func TestKissRoundOwnedByKissedUser(t *testing.T) {
	b := newKissTestBot()

	// After sender→target, the chained round belongs to the kissed user.
	sess, err := b.startKissRound("g1", "c1", "target", "sender")
	require.NoError(t, err)
	assert.Equal(t, "target", sess.OwnerID())

	b.kissMu.Lock()
	round := b.kissRounds[sess.ID]
	b.kissMu.Unlock()
	require.NotNil(t, round)
	assert.Equal(t, "target", round.kisserID)
	assert.Equal(t, "sender", round.kissedID)

	// The original sender cannot press the buttons.
	status, err := sess.Advance(b.ctx, session.Gesture{UserID: "sender", Action: session.ActionConfirm})
	assert.ErrorIs(t, err, session.ErrNotOwner)
	assert.Equal(t, session.StatusActive, status)

	// The kissed user kisses back: one increment on the swapped pair.
	status, err = sess.Advance(b.ctx, session.Gesture{UserID: "target", Action: session.ActionConfirm})
	require.NoError(t, err)
	assert.Equal(t, session.StatusCommitted, status)
	assert.EqualValues(t, 1, round.count)

	b.kissMu.Lock()
	_, live := b.kissRounds[sess.ID]
	b.kissMu.Unlock()
	assert.False(t, live, "terminal rounds leave the registry")

	count, err := b.kisses.Kiss(b.ctx, "g1", "target", "sender")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "the committed round already tallied one target→sender kiss")
}
