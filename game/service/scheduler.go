package service

import (
	"sync"
	"time"
)

// Scheduler runs delayed room tasks. At most one task is pending per key;
// scheduling again replaces it.
type Scheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string)
	Stop()
}

// TimerScheduler is a Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewTimerScheduler creates an empty scheduler
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn after delay unless it is cancelled or replaced first.
func (s *TimerScheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[key] != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = t
}

// Cancel drops the pending task for key, if any.
func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Stop cancels everything and rejects further tasks.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.stopped = true
}

// Pending returns the number of scheduled tasks
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
