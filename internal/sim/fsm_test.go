package sim

import (
	"errors"
	"testing"
)

// TestStateMachineInitial verifies the machine starts in LOADING
func TestStateMachineInitial(t *testing.T) {
	m := NewStateMachine(32)

	if m.Current() != StateLoading {
		t.Errorf("Expected initial state loading, got %s", m.Current())
	}
	if len(m.History()) != 0 {
		t.Error("History should start empty")
	}
	if m.Session() == nil {
		t.Error("Machine should own a session")
	}
}

// TestStateMachineLifecycle walks the full happy path through every state
func TestStateMachineLifecycle(t *testing.T) {
	m := NewStateMachine(32)

	steps := []State{StateMenu, StatePlaying, StatePaused, StatePlaying, StateGameOver, StateMenu}
	for _, to := range steps {
		if err := m.TransitionTo(to); err != nil {
			t.Fatalf("Transition to %s failed: %v", to, err)
		}
		if m.Current() != to {
			t.Fatalf("Expected state %s, got %s", to, m.Current())
		}
	}

	if len(m.History()) != len(steps) {
		t.Errorf("Expected %d history entries, got %d", len(steps), len(m.History()))
	}
}

// TestStateMachineRejectsInvalid verifies rejections leave state and history
// untouched and report a typed error
func TestStateMachineRejectsInvalid(t *testing.T) {
	m := NewStateMachine(32)
	m.TransitionTo(StateMenu)

	// Pause while in the menu: not allowed
	err := m.TransitionTo(StatePaused)
	if err == nil {
		t.Fatal("Expected error for menu -> paused")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
	if m.Current() != StateMenu {
		t.Errorf("State should be unchanged after rejection, got %s", m.Current())
	}
	if len(m.History()) != 1 {
		t.Errorf("Rejection must not append to history, got %d entries", len(m.History()))
	}
	if m.RejectedCount() != 1 {
		t.Errorf("Expected 1 rejected transition, got %d", m.RejectedCount())
	}

	// The machine keeps working after a rejection
	if err := m.TransitionTo(StatePlaying); err != nil {
		t.Errorf("Valid transition after rejection failed: %v", err)
	}
}

// TestStateMachineRestartShortcuts verifies GAME_OVER and VICTORY can start a
// new run directly, bypassing the menu
func TestStateMachineRestartShortcuts(t *testing.T) {
	m := NewStateMachine(32)
	m.TransitionTo(StateMenu)
	m.TransitionTo(StatePlaying)
	m.TransitionTo(StateGameOver)

	if err := m.TransitionTo(StatePlaying); err != nil {
		t.Errorf("game_over -> playing restart failed: %v", err)
	}

	m.TransitionTo(StateVictory)
	if err := m.TransitionTo(StatePlaying); err != nil {
		t.Errorf("victory -> playing restart failed: %v", err)
	}
}

// TestStateMachineCanPauseGate verifies SetCanPause(false) blocks pausing
func TestStateMachineCanPauseGate(t *testing.T) {
	m := NewStateMachine(32)
	m.TransitionTo(StateMenu)
	m.TransitionTo(StatePlaying)

	m.SetCanPause(false)
	if m.CanTransition(StatePaused) {
		t.Error("CanTransition should report false with pausing gated off")
	}
	if err := m.TransitionTo(StatePaused); err == nil {
		t.Error("Pause should be rejected while gated off")
	}

	m.SetCanPause(true)
	if err := m.TransitionTo(StatePaused); err != nil {
		t.Errorf("Pause should succeed once re-enabled: %v", err)
	}
}

// TestStateMachinePrevious verifies previousState distinguishes a fresh
// PLAYING entry from a resume out of PAUSED
func TestStateMachinePrevious(t *testing.T) {
	m := NewStateMachine(32)
	m.TransitionTo(StateMenu)

	m.TransitionTo(StatePlaying)
	if m.Previous() != StateMenu {
		t.Errorf("Expected previous menu on fresh entry, got %s", m.Previous())
	}

	m.TransitionTo(StatePaused)
	m.TransitionTo(StatePlaying)
	if m.Previous() != StatePaused {
		t.Errorf("Expected previous paused on resume, got %s", m.Previous())
	}
}

// TestStateMachineListeners verifies listeners fire synchronously, in
// registration order, only for their own state
func TestStateMachineListeners(t *testing.T) {
	m := NewStateMachine(32)

	var order []string
	m.OnEnter(StatePlaying, func(from State, s *Session) {
		order = append(order, "first")
		if from != StateMenu {
			t.Errorf("Expected from menu, got %s", from)
		}
	})
	m.OnEnter(StatePlaying, func(from State, s *Session) {
		order = append(order, "second")
	})
	m.OnEnter(StateGameOver, func(from State, s *Session) {
		order = append(order, "wrong-state")
	})

	m.TransitionTo(StateMenu)
	if len(order) != 0 {
		t.Error("No listener should fire for menu entry")
	}

	m.TransitionTo(StatePlaying)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Expected [first second], got %v", order)
	}
}

// TestStateMachineHistoryBounded verifies oldest entries are dropped beyond
// the retention limit
func TestStateMachineHistoryBounded(t *testing.T) {
	m := NewStateMachine(4)
	m.TransitionTo(StateMenu)

	// Bounce playing <-> paused to pile up transitions
	m.TransitionTo(StatePlaying)
	for i := 0; i < 5; i++ {
		m.TransitionTo(StatePaused)
		m.TransitionTo(StatePlaying)
	}

	h := m.History()
	if len(h) != 4 {
		t.Fatalf("Expected history bounded to 4, got %d", len(h))
	}
	// The newest entry is the last resume
	last := h[len(h)-1]
	if last.From != StatePaused || last.To != StatePlaying {
		t.Errorf("Expected newest entry paused -> playing, got %s -> %s", last.From, last.To)
	}
}
