package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmSpec(owner string, ttl time.Duration, commits *atomic.Int32) Spec {
	return Spec{
		OwnerID: owner,
		GuildID: "g1",
		TTL:     ttl,
		Stages:  []Stage{{Name: "confirm", Confirm: true}},
		Commit: func(context.Context, map[string]string) error {
			commits.Add(1)
			return nil
		},
	}
}

func TestCommitRunsExactlyOnce(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	s, err := m.Start(confirmSpec("u1", time.Minute, &commits))
	require.NoError(t, err)

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, status)
	assert.EqualValues(t, 1, commits.Load())

	// Duplicate gestures after the terminal state change nothing.
	status, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, StatusCommitted, status)
	assert.EqualValues(t, 1, commits.Load())

	assert.Nil(t, m.Resolve(s.ID), "terminal sessions leave the registry")
}

func TestNonOwnerGesturesAreInert(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	s, err := m.Start(confirmSpec("u1", time.Minute, &commits))
	require.NoError(t, err)

	status, err := s.Advance(context.Background(), Gesture{UserID: "intruder", Action: ActionConfirm})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, StatusActive, status)
	assert.EqualValues(t, 0, commits.Load())

	status, err = s.Advance(context.Background(), Gesture{UserID: "intruder", Action: ActionCancel})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, StatusActive, status)

	// The owner can still finish normally afterwards.
	status, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, status)
}

func TestCancelSkipsCommit(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	s, err := m.Start(confirmSpec("u1", time.Minute, &commits))
	require.NoError(t, err)

	status, err := s.Cancel(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, status)
	assert.EqualValues(t, 0, commits.Load())
	assert.Nil(t, m.Resolve(s.ID))
}

func TestExpiryNeverCommits(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32
	terminal := make(chan Status, 1)

	spec := confirmSpec("u1", 30*time.Millisecond, &commits)
	spec.OnTerminal = func(_ *Session, st Status) { terminal <- st }

	s, err := m.Start(spec)
	require.NoError(t, err)

	select {
	case st := <-terminal:
		assert.Equal(t, StatusExpired, st)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry never fired")
	}

	assert.EqualValues(t, 0, commits.Load())
	assert.Nil(t, m.Resolve(s.ID))

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, StatusExpired, status)
	assert.EqualValues(t, 0, commits.Load())
}

func TestValidationFailureStaysAtStage(t *testing.T) {
	m := NewManager()
	var got map[string]string

	s, err := m.Start(Spec{
		OwnerID: "u1",
		TTL:     time.Minute,
		Stages: []Stage{
			{
				Name:  "pick",
				Field: "choice",
				Validate: func(_ map[string]string, values []string) error {
					if len(values) == 0 || values[0] == "bad" {
						return errors.New("rejected")
					}
					return nil
				},
			},
			{Name: "confirm", Confirm: true},
		},
		Commit: func(_ context.Context, input map[string]string) error {
			got = input
			return nil
		},
	})
	require.NoError(t, err)

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"bad"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, StatusActive, status)
	assert.Equal(t, "pick", s.StageName())
	assert.Empty(t, s.Value("choice"))

	status, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"good"}})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)
	assert.Equal(t, "confirm", s.StageName())

	status, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, status)
	assert.Equal(t, map[string]string{"choice": "good"}, got)
}

func TestSubmitStageRejectsSelects(t *testing.T) {
	m := NewManager()
	var got map[string]string

	// field picker, then a form-only value stage: re-selecting on the picker
	// while the form is pending must not complete the workflow.
	s, err := m.Start(Spec{
		OwnerID: "u1",
		TTL:     time.Minute,
		Stages: []Stage{
			{Name: "field", Field: "field"},
			{Name: "value", Field: "value", Submit: true},
		},
		Commit: func(_ context.Context, input map[string]string) error {
			got = input
			return nil
		},
	})
	require.NoError(t, err)

	_, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"first_name"}})
	require.NoError(t, err)
	require.Equal(t, "value", s.StageName())

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"second_name"}})
	assert.ErrorIs(t, err, ErrBadGesture)
	assert.Equal(t, StatusActive, status)
	assert.Equal(t, "value", s.StageName())
	assert.Nil(t, got)

	status, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSubmit, Values: []string{"Pedro"}})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, status)
	assert.Equal(t, map[string]string{"field": "first_name", "value": "Pedro"}, got)
}

func TestConfirmStageRejectsOtherGestures(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	s, err := m.Start(confirmSpec("u1", time.Minute, &commits))
	require.NoError(t, err)

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"x"}})
	assert.ErrorIs(t, err, ErrBadGesture)
	assert.Equal(t, StatusActive, status)
	assert.EqualValues(t, 0, commits.Load())
}

func TestMultiStageRecordsValues(t *testing.T) {
	m := NewManager()
	var got map[string]string

	s, err := m.Start(Spec{
		OwnerID: "u1",
		TTL:     time.Minute,
		Stages: []Stage{
			{Name: "role", Field: "role"},
			{Name: "perms", Field: "perms"},
		},
		Commit: func(_ context.Context, input map[string]string) error {
			got = input
			return nil
		},
	})
	require.NoError(t, err)

	_, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"r1"}})
	require.NoError(t, err)
	assert.Equal(t, "r1", s.Value("role"))

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"warn", "kick"}})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, status)
	assert.Equal(t, map[string]string{"role": "r1", "perms": "warn,kick"}, got)
}

func TestCommitErrorStillTerminal(t *testing.T) {
	m := NewManager()
	boom := errors.New("db down")

	s, err := m.Start(Spec{
		OwnerID: "u1",
		TTL:     time.Minute,
		Stages:  []Stage{{Name: "confirm", Confirm: true}},
		Commit:  func(context.Context, map[string]string) error { return boom },
	})
	require.NoError(t, err)

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusCommitted, status)

	// The failure does not reopen the session.
	_, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	assert.ErrorIs(t, err, ErrFinished)
}

func TestSlotKeyExclusion(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	spec := confirmSpec("u1", time.Minute, &commits)
	spec.Key = "warn:clear:g1:u2"

	first, err := m.Start(spec)
	require.NoError(t, err)

	_, err = m.Start(spec)
	assert.ErrorIs(t, err, ErrSlotBusy)

	// A different slot is unaffected.
	other := confirmSpec("u1", time.Minute, &commits)
	other.Key = "warn:clear:g1:u3"
	_, err = m.Start(other)
	require.NoError(t, err)

	// Terminating the holder frees the slot.
	_, err = first.Cancel(context.Background(), "u1")
	require.NoError(t, err)
	_, err = m.Start(spec)
	assert.NoError(t, err)
}

func TestAdvanceResetsExpiry(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	s, err := m.Start(Spec{
		OwnerID: "u1",
		TTL:     300 * time.Millisecond,
		Stages: []Stage{
			{Name: "pick", Field: "choice"},
			{Name: "confirm", Confirm: true},
		},
		Commit: func(context.Context, map[string]string) error {
			commits.Add(1)
			return nil
		},
	})
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	_, err = s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionSelect, Values: []string{"x"}})
	require.NoError(t, err)

	// Past the original deadline but inside the refreshed window.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, StatusActive, s.Status())

	status, err := s.Advance(context.Background(), Gesture{UserID: "u1", Action: ActionConfirm})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, status)
	assert.EqualValues(t, 1, commits.Load())
}

func TestStaleTimerFireDoesNotExpire(t *testing.T) {
	m := NewManager()
	var commits atomic.Int32

	s, err := m.Start(confirmSpec("u1", time.Minute, &commits))
	require.NoError(t, err)

	// A fire that lost the race against a window reset sees a live deadline
	// and must re-arm instead of expiring.
	s.expire()
	assert.Equal(t, StatusActive, s.Status())
	assert.NotNil(t, m.Resolve(s.ID))

	// Once the deadline truly passed, the same path expires the session.
	s.mu.Lock()
	s.expiresAt = time.Now().Add(-time.Millisecond)
	s.mu.Unlock()
	s.expire()
	assert.Equal(t, StatusExpired, s.Status())
	assert.EqualValues(t, 0, commits.Load())
	assert.Nil(t, m.Resolve(s.ID))
}

func TestStartValidation(t *testing.T) {
	m := NewManager()

	_, err := m.Start(Spec{OwnerID: "u1", TTL: time.Minute})
	assert.Error(t, err, "no stages")

	_, err = m.Start(Spec{TTL: time.Minute, Stages: []Stage{{Name: "s"}}})
	assert.Error(t, err, "no owner")

	_, err = m.Start(Spec{OwnerID: "u1", Stages: []Stage{{Name: "s"}}})
	assert.Error(t, err, "no TTL")

	assert.Zero(t, m.Live())
}
