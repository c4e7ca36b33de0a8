// Package session drives timed, owner-scoped, multi-step interactions:
// prompt → collect one gesture → validate → advance or terminate. Stage and
// accumulated input live as data on the Session, not in callback closures, so
// a workflow's state survives any number of asynchronous turns. Every session
// commits at most one terminal mutation; duplicate gestures after a terminal
// state are no-ops.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusActive Status = iota
	StatusCommitted
	StatusCancelled
	StatusExpired
)

func (s Status) Terminal() bool { return s != StatusActive }

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCommitted:
		return "committed"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Action is the kind of gesture received from the transport layer.
type Action int

const (
	ActionSelect  Action = iota // menu choice
	ActionSubmit                // form/modal submission
	ActionConfirm               // confirm button
	ActionCancel                // cancel button
)

// Gesture is one user input event, tagged with its initiator.
type Gesture struct {
	UserID string
	Action Action
	Values []string
}

// Stage describes one step of a workflow. A plain stage consumes a
// select/submit gesture and records its values; a Confirm stage resolves via
// confirm or cancel. Submit restricts a plain stage to form submissions, so a
// stray select from a still-visible picker cannot complete it. Validate, when
// set, gets the input collected so far and the incoming values; a validation
// error keeps the session at this stage.
type Stage struct {
	Name     string
	Field    string
	Confirm  bool
	Submit   bool
	Validate func(input map[string]string, values []string) error
}

// Spec configures a workflow instance. Key names the logical slot: Start
// refuses a second live session for the same Key, so two sessions can never
// race on one committable target. Commit runs exactly once, on the gesture
// that completes the final stage. OnTerminal fires after any terminal
// transition (including expiry) so the transport can neutralize its UI.
type Spec struct {
	Key        string
	OwnerID    string
	GuildID    string
	ChannelID  string
	TTL        time.Duration
	Stages     []Stage
	Commit     func(ctx context.Context, input map[string]string) error
	OnTerminal func(s *Session, st Status)
}

var (
	// ErrNotOwner rejects gestures from anyone but the session owner.
	ErrNotOwner = errors.New("session: gesture from non-owner")
	// ErrFinished rejects gestures arriving after a terminal state.
	ErrFinished = errors.New("session: already finished")
	// ErrSlotBusy rejects Start while a live session holds the same key.
	ErrSlotBusy = errors.New("session: slot already has a live session")
	// ErrInvalidInput wraps stage validation failures; the session stays put.
	ErrInvalidInput = errors.New("session: invalid input")
	// ErrBadGesture rejects gesture kinds the current stage does not accept.
	ErrBadGesture = errors.New("session: gesture not accepted at this stage")
)

// Session is one live workflow instance. All state is guarded by mu; the
// expiry timer and owner gestures race for the terminal transition and the
// loser becomes a no-op.
type Session struct {
	ID string

	mgr  *Manager
	spec Spec

	mu        sync.Mutex
	stage     int
	input     map[string]string
	status    Status
	expiresAt time.Time
	timer     *time.Timer
}

// Manager owns every live session, keyed by correlation ID and by slot key.
type Manager struct {
	mu    sync.Mutex
	byID  map[string]*Session
	byKey map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		byID:  make(map[string]*Session),
		byKey: make(map[string]*Session),
	}
}

// Start opens a session and arms its expiry timer. The returned session's ID
// is the correlation token to embed in component custom IDs.
func (m *Manager) Start(spec Spec) (*Session, error) {
	if len(spec.Stages) == 0 {
		return nil, errors.New("session: spec has no stages")
	}
	if spec.OwnerID == "" {
		return nil, errors.New("session: spec has no owner")
	}
	if spec.TTL <= 0 {
		return nil, errors.New("session: spec has no TTL")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if spec.Key != "" {
		if _, live := m.byKey[spec.Key]; live {
			return nil, ErrSlotBusy
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		mgr:       m,
		spec:      spec,
		input:     make(map[string]string),
		expiresAt: time.Now().Add(spec.TTL),
	}
	s.timer = time.AfterFunc(spec.TTL, s.expire)

	m.byID[s.ID] = s
	if spec.Key != "" {
		m.byKey[spec.Key] = s
	}
	return s, nil
}

// Resolve maps a correlation token back to a live session, or nil when the
// session already reached a terminal state and was collected.
func (m *Manager) Resolve(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

// Live reports the number of live sessions.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	delete(m.byID, s.ID)
	if s.spec.Key != "" && m.byKey[s.spec.Key] == s {
		delete(m.byKey, s.spec.Key)
	}
	m.mu.Unlock()
}

// Advance feeds one gesture into the session. Non-owner gestures change
// nothing and return ErrNotOwner. An owner cancel is honored at any stage.
// A validation failure keeps the current stage. The gesture completing the
// final stage runs Commit exactly once and returns its error alongside
// StatusCommitted; the session is terminal either way.
func (s *Session) Advance(ctx context.Context, g Gesture) (Status, error) {
	s.mu.Lock()
	if s.status.Terminal() {
		st := s.status
		s.mu.Unlock()
		return st, ErrFinished
	}
	if g.UserID != s.spec.OwnerID {
		s.mu.Unlock()
		return StatusActive, ErrNotOwner
	}

	if g.Action == ActionCancel {
		s.endLocked(StatusCancelled)
		s.mu.Unlock()
		s.settle(StatusCancelled)
		return StatusCancelled, nil
	}

	st := s.spec.Stages[s.stage]
	if st.Confirm {
		if g.Action != ActionConfirm {
			s.mu.Unlock()
			return StatusActive, ErrBadGesture
		}
	} else {
		if g.Action != ActionSelect && g.Action != ActionSubmit {
			s.mu.Unlock()
			return StatusActive, ErrBadGesture
		}
		if st.Submit && g.Action != ActionSubmit {
			s.mu.Unlock()
			return StatusActive, ErrBadGesture
		}
		if st.Validate != nil {
			if err := st.Validate(s.input, g.Values); err != nil {
				s.mu.Unlock()
				return StatusActive, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		if st.Field != "" {
			s.input[st.Field] = strings.Join(g.Values, ",")
		}
	}

	if s.stage < len(s.spec.Stages)-1 {
		s.stage++
		s.touchLocked()
		s.mu.Unlock()
		return StatusActive, nil
	}

	s.endLocked(StatusCommitted)
	input := make(map[string]string, len(s.input))
	for k, v := range s.input {
		input[k] = v
	}
	s.mu.Unlock()

	var commitErr error
	if s.spec.Commit != nil {
		commitErr = s.spec.Commit(ctx, input)
	}
	s.settle(StatusCommitted)
	return StatusCommitted, commitErr
}

// Cancel is the explicit owner-only immediate cancellation.
func (s *Session) Cancel(ctx context.Context, userID string) (Status, error) {
	return s.Advance(ctx, Gesture{UserID: userID, Action: ActionCancel})
}

// expire fires from the timer; it loses cleanly if a gesture got there first.
// A fire can also be stale: the timer may have gone off while a valid gesture
// was resetting the window, so the deadline is re-checked under the lock and
// the timer re-armed when it moved.
func (s *Session) expire() {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return
	}
	if d := time.Until(s.expiresAt); d > 0 {
		s.timer.Reset(d)
		s.mu.Unlock()
		return
	}
	s.status = StatusExpired
	s.mu.Unlock()
	s.settle(StatusExpired)
}

// endLocked marks the terminal state and disarms the timer. Caller holds mu.
func (s *Session) endLocked(st Status) {
	s.status = st
	if s.timer != nil {
		s.timer.Stop()
	}
}

// touchLocked resets the expiry window after a valid gesture. Caller holds mu.
func (s *Session) touchLocked() {
	s.expiresAt = time.Now().Add(s.spec.TTL)
	if s.timer != nil {
		s.timer.Reset(s.spec.TTL)
	}
}

// settle releases the registry slot and notifies the transport, outside mu.
func (s *Session) settle(st Status) {
	s.mgr.release(s)
	if s.spec.OnTerminal != nil {
		s.spec.OnTerminal(s, st)
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StageName returns the current stage's name.
func (s *Session) StageName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec.Stages[s.stage].Name
}

// Value returns a collected input field.
func (s *Session) Value(field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input[field]
}

// ExpiresAt returns the current expiry deadline.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// OwnerID returns the only user allowed to advance the session.
func (s *Session) OwnerID() string { return s.spec.OwnerID }

// GuildID returns the guild the session is scoped to.
func (s *Session) GuildID() string { return s.spec.GuildID }

// ChannelID returns the channel the workflow was opened in.
func (s *Session) ChannelID() string { return s.spec.ChannelID }
