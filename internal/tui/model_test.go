package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/winescan/internal/catalog"
	"github.com/ensigniasec/winescan/internal/scan"
	"github.com/ensigniasec/winescan/internal/scan/scantest"
)

type fakeProfile struct {
	scans     []string
	cancelled int
	err       error
}

func (f *fakeProfile) RecordScan(wineID string, _ time.Time) error {
	f.scans = append(f.scans, wineID)
	return f.err
}

func (f *fakeProfile) RecordCancelled() error {
	f.cancelled++
	return f.err
}

type fakeFavorites struct {
	ids map[string]bool
}

func (f *fakeFavorites) IsFavorite(id string) bool { return f.ids[id] }

func (f *fakeFavorites) ToggleFavorite(id string) (bool, error) {
	f.ids[id] = !f.ids[id]
	return f.ids[id], nil
}

type fixture struct {
	model   Model
	engine  *scan.Engine
	sched   *scantest.VirtualScheduler
	profile *fakeProfile
	favs    *fakeFavorites
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default(catalog.WithSeed(1))
	require.NoError(t, err)
	sched := scantest.New()
	engine, err := scan.NewEngine(cat, scan.WithScheduler(sched))
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	stateCh := make(chan scan.State, channelBufferSize)
	engine.Subscribe(bridge(stateCh))

	f := &fixture{
		engine:  engine,
		sched:   sched,
		profile: &fakeProfile{},
		favs:    &fakeFavorites{ids: map[string]bool{}},
	}
	f.model = NewModel(engine, stateCh, f.profile, f.favs)
	f.model.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) press(keys string) tea.Cmd {
	return f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

// finish drives the current run to its outcome and feeds it to the model.
func (f *fixture) finish(t *testing.T, wait tea.Cmd) {
	t.Helper()
	require.NotNil(t, wait)
	f.sched.Advance(f.engine.Timings().Total())
	msg := wait()
	require.IsType(t, outcomeMsg{}, msg)
	f.send(msg)
}

func TestStartKeyBeginsScan(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, scan.PhaseIdle, f.model.State().Phase)

	cmd := f.press("s")
	require.NotNil(t, cmd)
	assert.Equal(t, scan.PhaseScanning, f.model.State().Phase)
	assert.Contains(t, f.model.View(), "Scanning label...")
}

func TestStateMessagesTrackEngine(t *testing.T) {
	f := newFixture(t)
	f.press("s")

	f.sched.Advance(1600 * time.Millisecond)
	cmd := f.send(stateMsg(scan.State{}))
	require.NotNil(t, cmd)

	st := f.model.State()
	assert.Equal(t, scan.PhaseDetected, st.Phase)
	assert.Equal(t, 100, st.Progress)
	assert.Contains(t, f.model.View(), "100%")
}

func TestOutcomeRecordsScan(t *testing.T) {
	f := newFixture(t)
	wait := f.press("s")
	f.finish(t, wait)

	st := f.model.State()
	require.Equal(t, scan.PhaseFound, st.Phase)
	require.NotNil(t, st.Result)
	assert.Equal(t, []string{st.Result.ID}, f.profile.scans)
	assert.Equal(t, 1, f.model.scans)
	assert.Contains(t, f.model.View(), st.Result.Label())
	assert.Contains(t, f.model.View(), "Wine found!")
}

func TestResetMidRunRecordsCancellation(t *testing.T) {
	f := newFixture(t)
	wait := f.press("s")
	f.sched.Advance(2 * time.Second)

	f.press("r")
	assert.Equal(t, scan.PhaseIdle, f.model.State().Phase)
	assert.Equal(t, 0, f.model.State().Progress)

	msg := wait()
	f.send(msg)
	assert.Equal(t, 1, f.profile.cancelled)
	assert.Empty(t, f.profile.scans)

	// Nothing from the cancelled run may surface later.
	f.sched.Advance(10 * time.Second)
	assert.Equal(t, scan.PhaseIdle, f.engine.Snapshot().Phase)
}

func TestStaleOutcomeKeepsCurrentRun(t *testing.T) {
	f := newFixture(t)
	first := f.press("s")
	f.sched.Advance(500 * time.Millisecond)
	f.press("r")

	require.NotNil(t, f.press("s"))
	current := f.model.State().RunID

	// The first run's cancelled outcome arrives after the second run started.
	msg := first()
	require.IsType(t, outcomeMsg{}, msg)
	assert.NotEqual(t, current, msg.(outcomeMsg).RunID)
	f.send(msg)
	assert.Equal(t, 1, f.profile.cancelled)
	assert.NotNil(t, f.model.done)
	assert.Equal(t, current, f.model.runID)
	assert.Equal(t, scan.PhaseScanning, f.model.State().Phase)

	cmd := f.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, scan.PhaseIdle, f.engine.Snapshot().Phase)
	assert.Equal(t, 2, f.profile.cancelled)
	assert.Empty(t, f.profile.scans)
}

func TestEscResets(t *testing.T) {
	f := newFixture(t)
	f.press("s")
	f.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, scan.PhaseIdle, f.model.State().Phase)
}

func TestStartWhileBusyIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.press("s")
	runID := f.model.State().RunID

	cmd := f.press("s")
	assert.Nil(t, cmd)
	assert.Equal(t, runID, f.model.State().RunID)
}

func TestStartFromFoundScansAgain(t *testing.T) {
	f := newFixture(t)
	f.finish(t, f.press("s"))
	first := f.model.State().RunID

	cmd := f.press("s")
	require.NotNil(t, cmd)
	st := f.model.State()
	assert.Equal(t, scan.PhaseScanning, st.Phase)
	assert.NotEqual(t, first, st.RunID)
	assert.Nil(t, st.Result)
}

func TestFlashToggle(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.model.View(), "FLASH OFF")

	f.press("f")
	assert.True(t, f.model.State().FlashEnabled)
	assert.Contains(t, f.model.View(), "FLASH ON")

	f.press("f")
	assert.False(t, f.model.State().FlashEnabled)
}

func TestFavoriteOnlyWhenFound(t *testing.T) {
	f := newFixture(t)
	f.press("a")
	assert.Empty(t, f.favs.ids)

	f.finish(t, f.press("s"))
	id := f.model.State().Result.ID

	f.press("a")
	assert.True(t, f.favs.ids[id])
	assert.True(t, f.model.favorite)
	assert.Contains(t, f.model.View(), "favorite")

	f.press("a")
	assert.False(t, f.favs.ids[id])
	assert.False(t, f.model.favorite)
}

func TestProfileErrorsSurface(t *testing.T) {
	f := newFixture(t)
	f.profile.err = errors.New("disk full")
	f.finish(t, f.press("s"))
	assert.Contains(t, f.model.View(), "disk full")
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t)
	assert.NotContains(t, f.model.View(), "favorite")
	f.press("?")
	assert.True(t, f.model.help.ShowAll)
	assert.Contains(t, f.model.View(), "favorite")
	f.press("?")
	assert.False(t, f.model.help.ShowAll)
}

func TestQuitCancelsRun(t *testing.T) {
	f := newFixture(t)
	f.press("s")
	cmd := f.press("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, scan.PhaseIdle, f.engine.Snapshot().Phase)
	assert.Equal(t, 1, f.profile.cancelled)
	assert.Equal(t, "Shutting down...\n", f.model.View())
}

func TestQuitAfterFoundRecordsOnce(t *testing.T) {
	f := newFixture(t)
	f.finish(t, f.press("s"))
	f.press("q")
	assert.Len(t, f.profile.scans, 1)
	assert.Zero(t, f.profile.cancelled)
}

func TestAutoStart(t *testing.T) {
	f := newFixture(t)
	f.model = f.model.WithAutoStart(true)
	require.NotNil(t, f.model.Init())

	cmd := f.send(startMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, scan.PhaseScanning, f.model.State().Phase)
}

func TestBridgeNeverBlocks(t *testing.T) {
	ch := make(chan scan.State, 1)
	fn := bridge(ch)
	fn(scan.State{Progress: 10})
	fn(scan.State{Progress: 20})
	assert.Len(t, ch, 1)
	assert.Equal(t, 10, (<-ch).Progress)
}

func TestWindowSizeClampsContent(t *testing.T) {
	f := newFixture(t)
	f.send(tea.WindowSizeMsg{Width: 10, Height: 20})
	assert.Equal(t, contentMinWidth, f.model.contentWidth())
	f.send(tea.WindowSizeMsg{Width: 200, Height: 20})
	assert.Equal(t, contentMaxWidth, f.model.contentWidth())
}
