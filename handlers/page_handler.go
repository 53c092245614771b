package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"talk-explorer/models"
	"talk-explorer/services"
	"talk-explorer/views"
)

// PageHandler serves the HTML page and its form actions
type PageHandler struct {
	sessions *services.SessionService
	logger   *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(sessions *services.SessionService, logger *slog.Logger) *PageHandler {
	return &PageHandler{sessions: sessions, logger: logger}
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	coord := coordinatorFor(h.sessions, w, r)
	page, err := coord.Render()
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	var buf bytes.Buffer
	if err := views.RenderHTML(&buf, page); err != nil {
		h.logger.Error("render page failed", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// Select handles POST /select/{id}
func (h *PageHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return
	}
	coord := coordinatorFor(h.sessions, w, r)
	// A form posted from a page whose session is gone lands on a fresh
	// session with an empty catalog; wait for it before resolving the id.
	state, err := coord.AwaitSettled(r.Context())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if state.Status.Phase != models.PhaseLoaded {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := coord.Select(id); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Deselect handles POST /deselect
func (h *PageHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	coord := coordinatorFor(h.sessions, w, r)
	if err := coord.Deselect(); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Retry handles POST /retry. Retrying when nothing failed just redirects.
func (h *PageHandler) Retry(w http.ResponseWriter, r *http.Request) {
	coord := coordinatorFor(h.sessions, w, r)
	if err := coord.Retry(); err != nil && statusFor(err) != http.StatusConflict {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Events handles GET /events, streaming one "change" event per state version.
func (h *PageHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, coord := sessionFor(h.sessions, w, r)
	if release, ok := h.sessions.Hold(id); ok {
		defer release()
	}
	updates, cancel, err := coord.Subscribe()
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %d\n\n", state.Version); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				h.logger.Debug("event stream flush failed", "err", err)
				return
			}
		}
	}
}
