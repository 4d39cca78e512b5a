package sim

import "time"

// Session is the mutable score/coin/time record for one play-through.
// It is created with the state machine, reset on new game or restart, and
// mutated only by the orchestrator on scoring, collection and time events.
type Session struct {
	Score     int
	Coins     int
	Level     int
	PlayTime  float64 // Accumulated seconds in PLAYING
	StartTime time.Time
}

// NewSession returns a fresh session starting at level 1.
func NewSession() *Session {
	return &Session{Level: 1, StartTime: time.Now()}
}

// Reset returns the session to its initial values for a new run.
func (s *Session) Reset() {
	*s = Session{Level: 1, StartTime: time.Now()}
}

// SessionSnapshot is an immutable copy of the session for collaborators.
type SessionSnapshot struct {
	Score    int     `json:"score"`
	Coins    int     `json:"coins"`
	Level    int     `json:"level"`
	PlayTime float64 `json:"playTime"`
}

// Snapshot returns an immutable copy of the session counters.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Score:    s.Score,
		Coins:    s.Coins,
		Level:    s.Level,
		PlayTime: s.PlayTime,
	}
}
