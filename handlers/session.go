package handlers

import (
	"errors"
	"net/http"

	"talk-explorer/services"
)

// SessionCookie carries the browser session id.
const SessionCookie = "explorer_session"

// coordinatorFor returns the caller's coordinator, starting a session and
// setting the cookie when needed.
func coordinatorFor(sessions *services.SessionService, w http.ResponseWriter, r *http.Request) *services.Coordinator {
	_, coord := sessionFor(sessions, w, r)
	return coord
}

// sessionFor is coordinatorFor that also reports the session id.
func sessionFor(sessions *services.SessionService, w http.ResponseWriter, r *http.Request) (string, *services.Coordinator) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	newID, coord, created := sessions.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return newID, coord
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownVideo):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotFailed):
		return http.StatusConflict
	case errors.Is(err, services.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
