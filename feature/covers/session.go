package covers

import (
	"sync"
	"time"
)

// Session holds the state of one caller. State is replaced, never mutated,
// so a committed Result can be shared safely.
type Session struct {
	ID string

	mu       sync.Mutex
	token    uint64
	state    *Result
	lastUsed time.Time
}

// begin hands out the token of a new operation, superseding older ones.
func (s *Session) begin(now time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.lastUsed = now
	return s.token
}

// commit stores res when token is still current.
func (s *Session) commit(token uint64, res *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return ErrSuperseded
	}
	s.state = res
	return nil
}

// current reports whether token is still the latest one.
func (s *Session) current(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.token
}

// State returns the committed state, or nil.
func (s *Session) State() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// reset clears the state and supersedes every operation in flight.
func (s *Session) reset(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.state = nil
	s.lastUsed = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// waiter is a session waiting on a shared refresh.
type waiter struct {
	sess  *Session
	token uint64
}

// recordLocks serializes passes on the same record id.
type recordLocks struct {
	mu    sync.Mutex
	locks map[string]*recordLock
}

type recordLock struct {
	sync.Mutex
	refs int
}

func newRecordLocks() *recordLocks {
	return &recordLocks{locks: make(map[string]*recordLock)}
}

// lock blocks until id is free and returns the matching unlock function.
func (l *recordLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &recordLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
