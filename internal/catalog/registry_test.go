package catalog

import (
	"errors"
	"testing"
	"time"
)

// ============================================================================
// Session Registry Tests
// ============================================================================

func newRegistrySession() *Session {
	return NewSession(SessionParams{
		Source:    &fakeSource{},
		Sink:      &fakeSink{},
		Warehouse: Warehouse{ID: "wh-1"},
		Currency:  "USD",
	})
}

func TestRegistryCreateGetDelete(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	s := newRegistrySession()
	id := r.Create(s)
	if id == "" {
		t.Fatal("Create() returned empty id")
	}

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != s {
		t.Fatal("Get() returned a different session")
	}

	r.Delete(id)
	if _, err := r.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Delete = %v, want ErrSessionNotFound", err)
	}
}

func TestRegistryUnknownID(t *testing.T) {
	r := NewRegistry(time.Minute)
	defer r.Close()

	if _, err := r.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(nope) = %v, want ErrSessionNotFound", err)
	}
	r.Delete("nope")
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	defer r.Close()

	id := r.Create(newRegistrySession())
	// Poll Len rather than Get: a Get would refresh the idle clock.
	waitFor(t, func() bool { return r.Len() == 0 }, "idle session never expired")
	if _, err := r.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after expiry = %v, want ErrSessionNotFound", err)
	}
}

func TestRegistryGetRefreshesIdleClock(t *testing.T) {
	r := NewRegistry(60 * time.Millisecond)
	defer r.Close()

	id := r.Create(newRegistrySession())
	for i := 0; i < 6; i++ {
		time.Sleep(20 * time.Millisecond)
		if _, err := r.Get(id); err != nil {
			t.Fatalf("session expired despite activity at step %d: %v", i, err)
		}
	}
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry(time.Minute)
	id := r.Create(newRegistrySession())
	r.Close()

	if _, err := r.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Close = %v, want ErrSessionNotFound", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
