package sim

import (
	"sync"
	"time"
)

// MaxRecords bounds the best-run table.
const MaxRecords = 10

// RunRecord is one finished play-through, kept for the best-runs table.
// Records are process-local only; they are discarded on exit.
type RunRecord struct {
	Score    int       `json:"score"`
	Coins    int       `json:"coins"`
	Level    int       `json:"level"`
	Wave     int       `json:"wave"`
	PlayTime float64   `json:"playTime"`
	Outcome  string    `json:"outcome"` // "victory" or "game_over"
	EndedAt  time.Time `json:"endedAt"`
}

// Records holds the in-memory best-runs table, ordered by score descending.
type Records struct {
	mu   sync.RWMutex
	best []RunRecord
}

// NewRecords creates an empty best-runs table.
func NewRecords() *Records {
	return &Records{best: make([]RunRecord, 0, MaxRecords)}
}

// Add inserts a finished run, keeping the table sorted by score descending
// and bounded at MaxRecords.
func (r *Records) Add(rec RunRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos := len(r.best)
	for i, b := range r.best {
		if rec.Score > b.Score {
			pos = i
			break
		}
	}
	if pos >= MaxRecords {
		return
	}

	r.best = append(r.best, RunRecord{})
	copy(r.best[pos+1:], r.best[pos:])
	r.best[pos] = rec

	if len(r.best) > MaxRecords {
		r.best = r.best[:MaxRecords]
	}
}

// Top returns a copy of the best runs, highest score first.
func (r *Records) Top() []RunRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RunRecord, len(r.best))
	copy(out, r.best)
	return out
}
