package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"sky-raid/internal/sim"
)

// Handler methods for routerHandlers.
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot: no tick-loop contention on every poll request
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.SessionSnapshot())
}

func (h *routerHandlers) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.History())
}

func (h *routerHandlers) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.BestRuns())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Stats())
}

func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	var in sim.InputIntent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	h.engine.SetInput(in)
	writeJSON(w, map[string]bool{"ok": true})
}

func (h *routerHandlers) handlePostControl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	var err error
	switch req.Action {
	case "start":
		err = h.engine.StartGame()
	case "pause":
		err = h.engine.Pause()
	case "resume":
		err = h.engine.Resume()
	case "restart":
		err = h.engine.Restart()
	case "menu":
		err = h.engine.ToMenu()
	default:
		writeError(w, "Unknown action", http.StatusBadRequest)
		return
	}

	if err != nil {
		// Rejected transitions are non-fatal: state is unchanged
		if errors.Is(err, sim.ErrInvalidTransition) {
			writeError(w, err.Error(), http.StatusConflict)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
