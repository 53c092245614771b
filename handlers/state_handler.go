package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"talk-explorer/models"
	"talk-explorer/services"
)

// StateHandler exposes the session's view state as JSON
type StateHandler struct {
	sessions *services.SessionService
	logger   *slog.Logger
}

// NewStateHandler creates a new state handler
func NewStateHandler(sessions *services.SessionService, logger *slog.Logger) *StateHandler {
	return &StateHandler{sessions: sessions, logger: logger}
}

// GetState handles GET /api/state. With ?wait=settled it blocks until the
// catalog load has finished or the request is canceled.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	coord := coordinatorFor(h.sessions, w, r)

	var (
		state models.ViewState
		err   error
	)
	if r.URL.Query().Get("wait") == "settled" {
		state, err = coord.AwaitSettled(r.Context())
	} else {
		state, err = coord.State()
	}
	if err != nil {
		h.logger.Debug("GetState failed", "err", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// UpdateSelection handles PUT /api/selection
func (h *StateHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var request models.SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.ID == nil {
		http.Error(w, "Video ID is required", http.StatusBadRequest)
		return
	}

	coord := coordinatorFor(h.sessions, w, r)
	if err := coord.Select(*request.ID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.respondState(w, coord)
}

// ClearSelection handles DELETE /api/selection
func (h *StateHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	coord := coordinatorFor(h.sessions, w, r)
	if err := coord.Deselect(); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.respondState(w, coord)
}

// Retry handles POST /api/retry
func (h *StateHandler) Retry(w http.ResponseWriter, r *http.Request) {
	coord := coordinatorFor(h.sessions, w, r)
	if err := coord.Retry(); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.respondState(w, coord)
}

func (h *StateHandler) respondState(w http.ResponseWriter, coord *services.Coordinator) {
	state, err := coord.State()
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
