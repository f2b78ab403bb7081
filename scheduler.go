package session

import (
	"sync"
	"time"
)

// Scheduler runs delayed, cancellable tasks. The redirect-after-delay pattern
// in the flows goes through here so teardown can guarantee a pending
// navigation never fires against an unmounted view.
type Scheduler struct {
	mu     sync.Mutex
	closed bool
	nextID int
	timers map[int]*time.Timer
}

// NewScheduler returns an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: map[int]*time.Timer{},
	}
}

// After schedules fn to run once after d and returns a cancel func. Zero and
// negative delays run fn inline, which keeps tests deterministic.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	if d <= 0 {
		fn()
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextID
	s.nextID++

	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, pending := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()

		if pending {
			fn()
		}
	})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.timers[id]; ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
}

// Pending reports how many tasks are waiting to fire
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels every pending task and rejects new ones
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
