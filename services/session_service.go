package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionService keeps one mounted Coordinator per browser session.
type SessionService struct {
	loader Loader
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mutex    sync.Mutex
	sessions map[string]*session
}

type session struct {
	coordinator *Coordinator
	lastSeen    time.Time
	holds       int
}

// NewSessionService creates a new session service
func NewSessionService(loader Loader, ttl time.Duration, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		loader:   loader,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Get returns the coordinator for id, creating and mounting a new session
// when id is unknown or expired. The returned id is the one to hand back to
// the client.
func (s *SessionService) Get(id string) (string, *Coordinator, bool) {
	now := s.now()

	s.mutex.Lock()
	expired := s.sweepLocked(now)
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = now
		s.mutex.Unlock()
		closeAll(expired)
		return id, sess.coordinator, false
	}

	id = uuid.NewString()
	coord := NewCoordinator(s.loader, s.logger.With("session", id))
	s.sessions[id] = &session{coordinator: coord, lastSeen: now}
	count := len(s.sessions)
	s.mutex.Unlock()

	closeAll(expired)
	coord.Mount()
	s.logger.Info("session started", "session", id, "sessions", count)
	return id, coord, true
}

// Hold pins an existing session against expiry until release is called,
// e.g. for the lifetime of an event stream. Release also counts as activity.
func (s *SessionService) Hold(id string) (release func(), ok bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.holds++
	sess.lastSeen = s.now()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mutex.Lock()
			defer s.mutex.Unlock()
			sess.holds--
			sess.lastSeen = s.now()
		})
	}, true
}

// Len returns the number of live sessions
func (s *SessionService) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}

// Close unmounts every session.
func (s *SessionService) Close() {
	s.mutex.Lock()
	all := make([]*Coordinator, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess.coordinator)
		delete(s.sessions, id)
	}
	s.mutex.Unlock()
	closeAll(all)
}

func (s *SessionService) sweepLocked(now time.Time) []*Coordinator {
	var expired []*Coordinator
	for id, sess := range s.sessions {
		if sess.holds == 0 && now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess.coordinator)
			delete(s.sessions, id)
			s.logger.Info("session expired", "session", id)
		}
	}
	return expired
}

func closeAll(coords []*Coordinator) {
	for _, c := range coords {
		c.Close()
	}
}
