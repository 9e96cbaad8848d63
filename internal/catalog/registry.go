package catalog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

// Registry tracks live editing sessions by id and expires the ones nobody
// has touched within the idle timeout. Expiry drops any unsubmitted edits,
// matching what closing the browser tab would do.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	idle     time.Duration
	done     chan struct{}
	closeOne sync.Once
}

// NewRegistry starts a registry whose janitor sweeps for idle sessions at
// half the idle timeout.
func NewRegistry(idle time.Duration) *Registry {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	r := &Registry{
		sessions: make(map[string]*sessionEntry),
		idle:     idle,
		done:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Create registers a new session and returns its id.
func (r *Registry) Create(s *Session) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{session: s, lastUsed: time.Now()}
	return id
}

// Get returns the session with the given id and refreshes its idle clock.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastUsed = time.Now()
	return e.session, nil
}

// Delete closes and removes a session. Unknown ids are a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.session.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the janitor and closes every session.
func (r *Registry) Close() {
	r.closeOne.Do(func() { close(r.done) })
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.sessions {
		e.session.Close()
		delete(r.sessions, id)
	}
}

func (r *Registry) janitor() {
	tick := time.NewTicker(r.idle / 2)
	defer tick.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-tick.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.idle)
	var expired []*sessionEntry
	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			expired = append(expired, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, e := range expired {
		e.session.Close()
	}
}
