package interview

import (
	"sync"

	"github.com/google/uuid"
)

// Tracker runs background work per session with a tracked handle, so callers
// (and tests) can await completion deterministically instead of polling.
type Tracker struct {
	mu     sync.Mutex
	groups map[uuid.UUID]*sync.WaitGroup
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{groups: make(map[uuid.UUID]*sync.WaitGroup)}
}

// Go runs fn in a new goroutine registered under the session ID.
func (t *Tracker) Go(sessionID uuid.UUID, fn func()) {
	t.mu.Lock()
	wg, ok := t.groups[sessionID]
	if !ok {
		wg = &sync.WaitGroup{}
		t.groups[sessionID] = wg
	}
	wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer wg.Done()
		fn()
	}()
}

// Wait blocks until all background work registered for the session has
// finished. It returns immediately if none was registered.
func (t *Tracker) Wait(sessionID uuid.UUID) {
	t.mu.Lock()
	wg, ok := t.groups[sessionID]
	t.mu.Unlock()
	if ok {
		wg.Wait()
	}
}

// sessionLocks serializes state mutations per session. Operations on
// different sessions proceed in parallel.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// acquire locks the session's mutex and returns the unlock function.
func (l *sessionLocks) acquire(sessionID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
