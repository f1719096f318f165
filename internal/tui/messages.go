package tui

import "github.com/ensigniasec/winescan/internal/scan"

// Message types for Bubble Tea update loop.

// stateMsg carries an engine snapshot from the subscription bridge.
type stateMsg scan.State

// outcomeMsg carries the single outcome of a run started from the screen.
type outcomeMsg scan.Outcome

// startMsg asks the screen to start a run, as if the start key was pressed.
type startMsg struct{}
