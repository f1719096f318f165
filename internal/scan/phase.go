package scan

// Phase is a discrete stage of a scan run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseDetected
	PhaseAnalyzing
	PhaseFound
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhaseDetected:
		return "detected"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseFound:
		return "found"
	default:
		return "unknown"
	}
}

// StatusText is the user-facing line shown for the phase.
func (p Phase) StatusText() string {
	switch p {
	case PhaseIdle:
		return "Position the label inside the frame"
	case PhaseScanning:
		return "Scanning label..."
	case PhaseDetected:
		return "Label detected"
	case PhaseAnalyzing:
		return "Analyzing wine..."
	case PhaseFound:
		return "Wine found!"
	default:
		return ""
	}
}

// Active reports whether a run is in flight (started and not yet found).
func (p Phase) Active() bool {
	return p == PhaseScanning || p == PhaseDetected || p == PhaseAnalyzing
}

// CanTransition reports whether p -> to is a legal edge: one step forward
// along Idle, Scanning, Detected, Analyzing, Found, or back to Idle from any
// non-idle phase.
func (p Phase) CanTransition(to Phase) bool {
	if to == PhaseIdle {
		return p != PhaseIdle
	}
	return p < PhaseFound && to == p+1
}
