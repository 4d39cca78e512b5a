package sim

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// State is the overall game phase.
type State uint8

const (
	StateLoading State = iota
	StateMenu
	StatePlaying
	StatePaused
	StateGameOver
	StateVictory
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	case StateVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned for a rejected state change. The rejection
// is non-fatal: state is unchanged and nothing is appended to history.
var ErrInvalidTransition = errors.New("invalid state transition")

// Transition is one accepted state change, kept in bounded history.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// StateListener is invoked synchronously when its state is entered.
type StateListener func(from State, session *Session)

// allowedTransitions is the closed transition set. GAME_OVER→PLAYING and
// VICTORY→PLAYING are the restart/new-game shortcuts that bypass MENU.
var allowedTransitions = map[State][]State{
	StateLoading:  {StateMenu},
	StateMenu:     {StatePlaying},
	StatePlaying:  {StatePaused, StateGameOver, StateVictory},
	StatePaused:   {StatePlaying},
	StateGameOver: {StateMenu, StatePlaying},
	StateVictory:  {StateMenu, StatePlaying},
}

// StateMachine owns the current game phase, validates transitions, notifies
// per-state listeners and records bounded transition history.
//
// previousState is load-bearing: it distinguishes entering PLAYING fresh
// (re-initialize pools) from resuming out of PAUSED (keep everything).
type StateMachine struct {
	current   State
	previous  State
	canPause  bool
	session   *Session
	history   []Transition
	retention int
	listeners map[State][]StateListener

	rejected uint64
}

// NewStateMachine creates a machine in LOADING with a fresh session.
// retention bounds the transition history; oldest entries are dropped beyond it.
func NewStateMachine(retention int) *StateMachine {
	if retention <= 0 {
		retention = 32
	}
	return &StateMachine{
		current:   StateLoading,
		previous:  StateLoading,
		canPause:  true,
		session:   NewSession(),
		retention: retention,
		listeners: make(map[State][]StateListener),
	}
}

// Current returns the active state. Exactly one state is active at any instant.
func (m *StateMachine) Current() State { return m.current }

// Previous returns the state immediately prior to the last accepted transition.
func (m *StateMachine) Previous() State { return m.previous }

// Session returns the machine's session record.
func (m *StateMachine) Session() *Session { return m.session }

// SetCanPause gates the PLAYING→PAUSED transition.
func (m *StateMachine) SetCanPause(v bool) { m.canPause = v }

// RejectedCount returns how many transition requests were rejected.
func (m *StateMachine) RejectedCount() uint64 { return m.rejected }

// OnEnter registers a listener invoked synchronously whenever the given state
// is entered, in registration order.
func (m *StateMachine) OnEnter(s State, fn StateListener) {
	m.listeners[s] = append(m.listeners[s], fn)
}

// History returns the bounded transition history, oldest first.
func (m *StateMachine) History() []Transition {
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}

// CanTransition reports whether current→to is in the allowed set, including
// the canPause gate.
func (m *StateMachine) CanTransition(to State) bool {
	if to == StatePaused && !m.canPause {
		return false
	}
	for _, next := range allowedTransitions[m.current] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo requests a state change. Rejections leave the state unchanged,
// append nothing to history, and are reported via error (logged, not fatal).
// On acceptance, previousState is set to the outgoing state, a history entry
// is appended, and listeners for the new state run synchronously in
// registration order.
func (m *StateMachine) TransitionTo(to State) error {
	if !m.CanTransition(to) {
		m.rejected++
		log.Printf("⚠️ Rejected transition %s -> %s", m.current, to)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}

	from := m.current
	m.previous = from
	m.current = to

	m.history = append(m.history, Transition{From: from, To: to, At: time.Now()})
	if len(m.history) > m.retention {
		m.history = m.history[len(m.history)-m.retention:]
	}

	for _, fn := range m.listeners[to] {
		fn(from, m.session)
	}

	return nil
}
