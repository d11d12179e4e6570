// Package session tracks the SSH sessions each running their own field so the
// server can notify them and wait for them to drain on shutdown.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// drainPoll is how often Shutdown checks whether every session has left.
const drainPoll = 200 * time.Millisecond

// Handle represents a registered session.
type Handle struct {
	ID      uuid.UUID
	User    string
	Started time.Time

	shutdown <-chan struct{}
}

// Shutdown returns a channel closed once the server starts shutting down.
func (h *Handle) Shutdown() <-chan struct{} {
	return h.shutdown
}

// Registry holds the live sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Handle
	closing  chan struct{}
	once     sync.Once
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Handle),
		closing:  make(chan struct{}),
	}
}

// Register adds a session for user and returns its handle. Sessions
// registered after Shutdown started see an already closed channel.
func (r *Registry) Register(user string) *Handle {
	h := &Handle{
		ID:       uuid.New(),
		User:     user,
		Started:  time.Now(),
		shutdown: r.closing,
	}
	r.mu.Lock()
	r.sessions[h.ID] = h
	r.mu.Unlock()
	return h
}

// Unregister removes a session. Unknown ids are ignored.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns a snapshot of the live sessions.
func (r *Registry) Sessions() []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Handle, 0, len(r.sessions))
	for _, h := range r.sessions {
		out = append(out, h)
	}
	return out
}

// Shutdown notifies every session and waits until all of them unregistered
// or timeout elapsed. It reports whether the registry drained.
func (r *Registry) Shutdown(timeout time.Duration) bool {
	r.once.Do(func() { close(r.closing) })

	if r.Count() == 0 {
		return true
	}

	deadline := time.After(timeout)
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return r.Count() == 0
		case <-ticker.C:
			if r.Count() == 0 {
				return true
			}
		}
	}
}
