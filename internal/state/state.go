// Package state holds the process-wide application state shared by the
// poller, the action dispatcher and the UI: the unread-only filter, the
// latest notification snapshot and the last error.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/guerinoni/ghn/internal/model"
)

// State is safe for concurrent use. The zero value is not usable; call New.
type State struct {
	unreadOnly atomic.Bool
	nextSeq    atomic.Uint64

	mu        sync.RWMutex
	applied   Snapshot
	lastErr   error
	lastErrAt time.Time
}

// Snapshot is the notification list of the newest applied fetch together
// with the filter that fetch ran under.
type Snapshot struct {
	Notifications []model.Notification
	Seq           uint64
	UnreadOnly    bool
	FetchedAt     time.Time
}

// New returns a State with the given initial filter.
func New(unreadOnly bool) *State {
	s := &State{}
	s.unreadOnly.Store(unreadOnly)
	return s
}

// UnreadOnly reports whether fetches should be limited to unread threads.
func (s *State) UnreadOnly() bool {
	return s.unreadOnly.Load()
}

// SetUnreadOnly stores the filter flag. The next fetch uses all=!unreadOnly.
func (s *State) SetUnreadOnly(unreadOnly bool) {
	s.unreadOnly.Store(unreadOnly)
}

// NextSeq reserves a sequence number for a fetch about to start.
// Sequence numbers start at 1 and increase monotonically.
func (s *State) NextSeq() uint64 {
	return s.nextSeq.Add(1)
}

// Apply replaces the snapshot with notifications produced by fetch seq,
// which ran with the given filter, unless a newer fetch has already been
// applied. It reports whether the snapshot changed hands. A successful
// apply clears the last error.
func (s *State) Apply(seq uint64, unreadOnly bool, notifications []model.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied.Seq {
		return false
	}

	cp := make([]model.Notification, len(notifications))
	copy(cp, notifications)

	s.applied = Snapshot{
		Notifications: cp,
		Seq:           seq,
		UnreadOnly:    unreadOnly,
		FetchedAt:     time.Now(),
	}
	s.lastErr = nil
	return true
}

// Snapshot returns a copy of the newest applied fetch. The filter it
// carries can differ from UnreadOnly while a refetch is pending.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.applied
	snap.Notifications = make([]model.Notification, len(s.applied.Notifications))
	copy(snap.Notifications, s.applied.Notifications)
	return snap
}

// SetError records a failure for display. A nil err clears it.
func (s *State) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		s.lastErrAt = time.Now()
	}
}

// LastError returns the most recent recorded failure, or nil.
func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LastErrorAt returns when the last failure was recorded.
func (s *State) LastErrorAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErrAt
}
