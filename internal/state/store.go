package state

import (
	"fmt"
	"sync"
	"time"
)

// Outcome summarizes a completed merge.
type Outcome struct {
	Remote   int // remote quotes written
	Kept     int // local quotes kept
	Replaced int // local quotes dropped because remote text matched
}

// Snapshot represents the latest sync status available to callers.
type Snapshot struct {
	Syncing             bool
	HasOutcome          bool
	Last                Outcome
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the remote has been unreachable for multiple syncs.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin marks a sync attempt as in flight.
func (s *Store) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Syncing = true
	s.snapshot.LastAttempt = time.Now()
}

// Succeed records a completed merge and clears any previous error.
func (s *Store) Succeed(out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Syncing = false
	s.snapshot.HasOutcome = true
	s.snapshot.Last = out
	s.snapshot.LastSuccess = time.Now()
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records a failed attempt. The previous outcome is kept.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Syncing = false
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
