package scan

import "errors"

var (
	// ErrBusy is returned by Start when the engine is not idle. A found
	// result must be cleared with Reset before the next run.
	ErrBusy = errors.New("scan engine is not idle")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("scan engine is closed")
	// ErrInvalidTimings is returned by NewEngine for timings that would stall
	// the run or push progress outside [0, 100].
	ErrInvalidTimings = errors.New("invalid scan timings")
)
