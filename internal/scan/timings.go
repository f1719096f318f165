package scan

import "time"

const (
	maxProgress = 100

	defaultStageDelay   = 1500 * time.Millisecond
	defaultTickInterval = 150 * time.Millisecond
	defaultProgressStep = 10
)

// Timings configures the two independent clocks of a run: the stage chain
// that advances the phase and the ticker that advances progress.
type Timings struct {
	// DetectDelay elapses between Scanning and Detected.
	DetectDelay time.Duration `mapstructure:"detect_delay" json:"detect_delay" validate:"gt=0"`
	// AnalyzeDelay elapses between Detected and Analyzing.
	AnalyzeDelay time.Duration `mapstructure:"analyze_delay" json:"analyze_delay" validate:"gt=0"`
	// FoundDelay elapses between Analyzing and Found.
	FoundDelay time.Duration `mapstructure:"found_delay" json:"found_delay" validate:"gt=0"`

	TickInterval time.Duration `mapstructure:"tick_interval" json:"tick_interval" validate:"gt=0"`
	ProgressStep int           `mapstructure:"progress_step" json:"progress_step" validate:"gte=1,lte=100"`
}

// DefaultTimings returns 1500ms per stage and +10 every 150ms.
func DefaultTimings() Timings {
	return Timings{
		DetectDelay:  defaultStageDelay,
		AnalyzeDelay: defaultStageDelay,
		FoundDelay:   defaultStageDelay,
		TickInterval: defaultTickInterval,
		ProgressStep: defaultProgressStep,
	}
}

// Total is the time from Start to Found.
func (t Timings) Total() time.Duration {
	return t.DetectDelay + t.AnalyzeDelay + t.FoundDelay
}

// stageDelay returns the delay that leads out of phase p.
func (t Timings) stageDelay(p Phase) time.Duration {
	switch p {
	case PhaseScanning:
		return t.DetectDelay
	case PhaseDetected:
		return t.AnalyzeDelay
	case PhaseAnalyzing:
		return t.FoundDelay
	default:
		return 0
	}
}
