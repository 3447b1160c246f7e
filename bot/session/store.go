// Package session keeps per-user conversation state for the lifetime of the
// process. State is ephemeral by design and does not survive restarts.
package session

import "sync"

// State identifies the conversation mode governing how the next free-text
// message from a user is interpreted.
type State string

const (
	// StateIdle indicates there is no active conversation flow.
	StateIdle State = "idle"
	// StateAwaitingInput indicates the next free-text message is captured
	// and forwarded to the operators.
	StateAwaitingInput State = "awaiting_input"
)

// Session stores conversation state and the account-link flag for one user.
type Session struct {
	State  State
	Linked bool
}

// Store is the per-user session store injected into the conversation flow
// and the operator control plane. All operations are total.
type Store interface {
	// Get returns the session for a user, creating and persisting a default
	// idle/unlinked one when absent.
	Get(userID int64) Session
	SetState(userID int64, st State)
	SetLinked(userID int64, linked bool)
	// Clear resets a session to defaults. The entry is retained, not removed.
	Clear(userID int64)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore constructs the in-memory Store implementation.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]*Session),
	}
}

func (m *memoryStore) Get(userID int64) Session {
	m.mu.RLock()
	if s, ok := m.sessions[userID]; ok {
		out := *s
		m.mu.RUnlock()
		return out
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return *s
	}
	s := &Session{State: StateIdle}
	m.sessions[userID] = s
	return *s
}

func (m *memoryStore) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle}
		m.sessions[userID] = s
	}
	s.State = st
}

func (m *memoryStore) SetLinked(userID int64, linked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle}
		m.sessions[userID] = s
	}
	s.Linked = linked
}

func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.State = StateIdle
		s.Linked = false
		return
	}
	m.sessions[userID] = &Session{State: StateIdle}
}
