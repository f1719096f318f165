package scan

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents future firings. It reports whether the timer was still
	// active; stopping twice is allowed.
	Stop() bool
}

// Scheduler abstracts the clock the engine runs on so tests can drive it
// with virtual time.
type Scheduler interface {
	// AfterFunc calls f once after d.
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f every d until stopped.
	Every(d time.Duration, f func()) Timer
}

// RealScheduler runs callbacks on wall-clock timers. Callbacks fire on timer
// goroutines.
func RealScheduler() Scheduler { return realScheduler{} }

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realScheduler) Every(d time.Duration, f func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stop)
		stopped = true
	})
	return stopped
}
