// Package relay tracks which users have an active operator relay session.
// Free text from a user in the set bypasses every conversation flow and is
// forwarded to the operators verbatim.
package relay

import "sync"

// Registry is the in-memory active-relay set.
type Registry struct {
	mu     sync.RWMutex
	active map[int64]struct{}
}

// NewRegistry returns an empty relay registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[int64]struct{})}
}

// Start adds a user to the active-relay set.
func (r *Registry) Start(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[userID] = struct{}{}
}

// End removes a user from the set and reports whether a session existed.
func (r *Registry) End(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[userID]
	delete(r.active, userID)
	return ok
}

// Active reports whether the user currently has a relay session.
func (r *Registry) Active(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[userID]
	return ok
}

// Count returns the number of active sessions (for diagnostics).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
