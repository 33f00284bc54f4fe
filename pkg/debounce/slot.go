// Package debounce provides a single-slot cancellable timer: scheduling a new
// task drops whatever was pending, so only the latest task ever runs.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer a Slot needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc is backed by time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Slot holds at most one pending task.
type Slot struct {
	mu    sync.Mutex
	after AfterFunc
	gen   uint64
	timer Timer
	task  func()
}

// New returns a Slot driven by after, or by the wall clock when after is nil.
func New(after AfterFunc) *Slot {
	if after == nil {
		after = RealAfterFunc
	}
	return &Slot{after: after}
}

// Schedule cancels the pending task, if any, and runs fn after delay.
func (s *Slot) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	gen := s.gen
	s.task = fn
	s.timer = s.after(delay, func() { s.fire(gen) })
}

// Cancel drops the pending task. It reports whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.task != nil
	s.stopLocked()
	return pending
}

// Pending reports whether a task is waiting to fire.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task != nil
}

// Flush runs the pending task immediately on the calling goroutine.
// It reports whether a task ran.
func (s *Slot) Flush() bool {
	s.mu.Lock()
	fn := s.task
	s.stopLocked()
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// stopLocked stops the timer and bumps the generation so a callback that
// already fired but has not taken the lock yet becomes a no-op.
func (s *Slot) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.task = nil
	s.gen++
}

func (s *Slot) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.task == nil {
		s.mu.Unlock()
		return
	}
	fn := s.task
	s.task = nil
	s.timer = nil
	s.mu.Unlock()

	fn()
}
