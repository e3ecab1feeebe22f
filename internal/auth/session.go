package auth

import (
	"sync"
	"time"
)

// Session describes the currently authenticated user as seen by the client layer.
type Session struct {
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
}

// SessionManager holds the active session and notifies listeners on auth state
// changes. It backs the getSession/onAuthStateChange contract of the gateway.
type SessionManager struct {
	mu        sync.RWMutex
	session   Session
	active    bool
	listeners map[int64]func(Session, bool)
	nextID    int64
}

// NewSessionManager constructs an empty session manager (signed out).
func NewSessionManager() *SessionManager {
	return &SessionManager{
		listeners: make(map[int64]func(Session, bool)),
	}
}

// Session returns the current session and whether one is active.
func (m *SessionManager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.active
}

// SetSession installs a session and notifies listeners.
func (m *SessionManager) SetSession(session Session) {
	m.mu.Lock()
	m.session = session
	m.active = true
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(session, true)
	}
}

// Clear signs the session out and notifies listeners.
func (m *SessionManager) Clear() {
	m.mu.Lock()
	m.session = Session{}
	m.active = false
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(Session{}, false)
	}
}

// OnChange registers a listener invoked on every auth state change. The
// returned cancel function removes the registration.
func (m *SessionManager) OnChange(listener func(Session, bool)) func() {
	if listener == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// snapshotListeners must be called with the mutex held.
func (m *SessionManager) snapshotListeners() []func(Session, bool) {
	copies := make([]func(Session, bool), 0, len(m.listeners))
	for _, listener := range m.listeners {
		copies = append(copies, listener)
	}
	return copies
}
