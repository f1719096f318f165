package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhase_CanTransition(t *testing.T) {
	t.Parallel()

	all := []Phase{PhaseIdle, PhaseScanning, PhaseDetected, PhaseAnalyzing, PhaseFound}
	legal := map[[2]Phase]bool{
		{PhaseIdle, PhaseScanning}:      true,
		{PhaseScanning, PhaseDetected}:  true,
		{PhaseDetected, PhaseAnalyzing}: true,
		{PhaseAnalyzing, PhaseFound}:    true,
		{PhaseScanning, PhaseIdle}:      true,
		{PhaseDetected, PhaseIdle}:      true,
		{PhaseAnalyzing, PhaseIdle}:     true,
		{PhaseFound, PhaseIdle}:         true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]Phase{from, to}], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestPhase_TextAndActive(t *testing.T) {
	t.Parallel()

	for _, p := range []Phase{PhaseIdle, PhaseScanning, PhaseDetected, PhaseAnalyzing, PhaseFound} {
		assert.NotEmpty(t, p.StatusText())
		assert.NotEqual(t, "unknown", p.String())
	}
	assert.Equal(t, "unknown", Phase(42).String())
	assert.Empty(t, Phase(42).StatusText())

	assert.False(t, PhaseIdle.Active())
	assert.True(t, PhaseScanning.Active())
	assert.True(t, PhaseAnalyzing.Active())
	assert.False(t, PhaseFound.Active())
}

func TestTimings_Defaults(t *testing.T) {
	t.Parallel()

	tm := DefaultTimings()
	assert.Equal(t, 4500*time.Millisecond, tm.Total())
	assert.Equal(t, tm.DetectDelay, tm.stageDelay(PhaseScanning))
	assert.Equal(t, tm.AnalyzeDelay, tm.stageDelay(PhaseDetected))
	assert.Equal(t, tm.FoundDelay, tm.stageDelay(PhaseAnalyzing))
	assert.Zero(t, tm.stageDelay(PhaseFound))
	assert.InDelta(t, 0.5, State{Progress: 50}.Percent(), 1e-9)
}
