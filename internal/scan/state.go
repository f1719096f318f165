package scan

import "github.com/ensigniasec/winescan/internal/catalog"

// State is an immutable snapshot of the engine, as seen by the screen.
type State struct {
	Phase        Phase
	Progress     int
	StatusText   string
	FlashEnabled bool
	// Result is set only while Phase is PhaseFound.
	Result *catalog.Wine
	// RunID identifies the current or just-found run; empty while idle.
	RunID string
}

// Percent returns Progress as a 0..1 fraction for progress bars.
func (s State) Percent() float64 {
	return float64(s.Progress) / maxProgress
}

func idleState(flash bool) State {
	return State{
		Phase:        PhaseIdle,
		StatusText:   PhaseIdle.StatusText(),
		FlashEnabled: flash,
	}
}

// Outcome is the single value delivered for each started run.
type Outcome struct {
	RunID   string        `json:"run_id"`
	Result  *catalog.Wine `json:"result,omitempty"`
	Success bool          `json:"success"`
}
