package services

import (
	"errors"
	"testing"
	"time"
)

func TestSessionService_GetCreatesAndReuses(t *testing.T) {
	svc := NewSessionService(staticLoader(talks, nil), time.Minute, quietLogger())
	defer svc.Close()

	id, c1, created := svc.Get("")
	if !created || id == "" {
		t.Fatalf("expected new session, got id=%q created=%v", id, created)
	}
	settle(t, c1)

	again, c2, created := svc.Get(id)
	if created || again != id || c2 != c1 {
		t.Fatal("expected the same session back")
	}

	other, c3, created := svc.Get("not-a-session")
	if !created || other == id || c3 == c1 {
		t.Fatal("unknown id should start a fresh session")
	}
	if svc.Len() != 2 {
		t.Fatalf("sessions = %d", svc.Len())
	}
}

func TestSessionService_SelectionIsPerSession(t *testing.T) {
	svc := NewSessionService(staticLoader(talks, nil), time.Minute, quietLogger())
	defer svc.Close()

	_, a, _ := svc.Get("")
	_, b, _ := svc.Get("")
	settle(t, a)
	settle(t, b)
	if err := a.Select(2); err != nil {
		t.Fatal(err)
	}
	sb, _ := b.State()
	if sb.Selection != nil {
		t.Fatal("selection leaked across sessions")
	}
}

func TestSessionService_Expiry(t *testing.T) {
	svc := NewSessionService(staticLoader(talks, nil), time.Minute, quietLogger())
	defer svc.Close()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	id, old, _ := svc.Get("")
	now = now.Add(2 * time.Minute)

	if _, ok := svc.Hold("missing"); ok {
		t.Fatal("hold of unknown id succeeded")
	}
	newID, _, created := svc.Get(id)
	if !created || newID == id {
		t.Fatal("expired session was reused")
	}
	if _, err := old.State(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expired coordinator still running: %v", err)
	}
	if svc.Len() != 1 {
		t.Fatalf("sessions = %d", svc.Len())
	}
}

func TestSessionService_Close(t *testing.T) {
	svc := NewSessionService(staticLoader(talks, nil), time.Minute, quietLogger())
	id, c, _ := svc.Get("")
	svc.Close()
	if _, ok := svc.Hold(id); ok {
		t.Fatal("session survived Close")
	}
	if _, err := c.State(); !errors.Is(err, ErrClosed) {
		t.Fatalf("coordinator still running: %v", err)
	}
}

func TestSessionService_HeldSessionSurvivesSweep(t *testing.T) {
	svc := NewSessionService(staticLoader(talks, nil), time.Minute, quietLogger())
	defer svc.Close()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	id, coord, _ := svc.Get("")
	updates, cancel, err := coord.Subscribe()
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	release, ok := svc.Hold(id)
	if !ok {
		t.Fatal("hold failed")
	}

	now = now.Add(10 * time.Minute)
	svc.Get("someone-else")

	if _, err := coord.State(); err != nil {
		t.Fatalf("held session was unmounted: %v", err)
	}
	if again, c, created := svc.Get(id); created || again != id || c != coord {
		t.Fatal("held session was replaced")
	}
	select {
	case _, open := <-updates:
		if !open {
			t.Fatal("subscription closed while held")
		}
	default:
	}

	release()
	release()
	now = now.Add(30 * time.Second)
	svc.Get("someone-else")
	if _, err := coord.State(); err != nil {
		t.Fatalf("session expired before ttl after release: %v", err)
	}

	now = now.Add(2 * time.Minute)
	svc.Get("someone-else")
	if _, err := coord.State(); !errors.Is(err, ErrClosed) {
		t.Fatalf("released session should expire, got %v", err)
	}
}
