// Package scantest provides a virtual-time scheduler for driving scan.Engine
// in tests.
package scantest

import (
	"sync"
	"time"

	"github.com/ensigniasec/winescan/internal/scan"
)

// VirtualScheduler implements scan.Scheduler on a manual clock. Nothing fires
// until Advance is called; callbacks then run synchronously on the caller's
// goroutine in due-time order (ties in scheduling order).
type VirtualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	events []*event
}

var _ scan.Scheduler = (*VirtualScheduler)(nil)

// New returns a scheduler at virtual time zero.
func New() *VirtualScheduler { return &VirtualScheduler{} }

type event struct {
	s        *VirtualScheduler
	due      time.Duration
	interval time.Duration
	seq      uint64
	fn       func()
	done     bool
}

func (ev *event) Stop() bool {
	ev.s.mu.Lock()
	defer ev.s.mu.Unlock()
	if ev.done {
		return false
	}
	ev.done = true
	ev.s.removeLocked(ev)
	return true
}

// AfterFunc schedules f once at now+d.
func (s *VirtualScheduler) AfterFunc(d time.Duration, f func()) scan.Timer {
	return s.add(d, 0, f)
}

// Every schedules f at now+d, now+2d, ... until stopped.
func (s *VirtualScheduler) Every(d time.Duration, f func()) scan.Timer {
	if d <= 0 {
		panic("scantest: Every needs a positive interval")
	}
	return s.add(d, d, f)
}

func (s *VirtualScheduler) add(d, interval time.Duration, f func()) *event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ev := &event{s: s, due: s.now + d, interval: interval, seq: s.seq, fn: f}
	s.events = append(s.events, ev)
	return ev
}

// Advance moves the clock forward by d, firing every callback that falls due.
// Callbacks may schedule or stop timers; newly scheduled timers that fall
// inside the window fire in the same call.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		ev := s.nextDueLocked(target)
		if ev == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = ev.due
		if ev.interval > 0 {
			ev.due += ev.interval
			s.seq++
			ev.seq = s.seq
		} else {
			ev.done = true
			s.removeLocked(ev)
		}
		fn := ev.fn
		s.mu.Unlock()

		fn()
	}
}

// Now returns the elapsed virtual time.
func (s *VirtualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of live timers.
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *VirtualScheduler) nextDueLocked(target time.Duration) *event {
	var next *event
	for _, ev := range s.events {
		if ev.due > target {
			continue
		}
		if next == nil || ev.due < next.due || (ev.due == next.due && ev.seq < next.seq) {
			next = ev
		}
	}
	return next
}

func (s *VirtualScheduler) removeLocked(target *event) {
	for i, ev := range s.events {
		if ev == target {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
}
