package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/winescan/internal/scan"
)

// Profile persists the counters the scan screen reports.
type Profile interface {
	RecordScan(wineID string, at time.Time) error
	RecordCancelled() error
}

// Favorites lets the screen save the wine it just found.
type Favorites interface {
	IsFavorite(wineID string) bool
	ToggleFavorite(wineID string) (bool, error)
}

// Model is the root Bubble Tea model of the scan screen.
type Model struct {
	engine *scan.Engine
	state  scan.State
	// done is the outcome channel of the run this screen started, if any,
	// and runID identifies that run.
	done  <-chan scan.Outcome
	runID string

	// inbound snapshots from the engine subscription
	stateCh chan scan.State

	profile   Profile
	favorites Favorites

	progress progress.Model
	spinner  spinner.Model
	help     help.Model

	// ui state
	autoStart bool
	favorite  bool
	scans    int
	lastErr  string
	width    int
	height   int
	quitting bool

	// keymap for consistent keybindings
	keys keyMap

	now func() time.Time
}

// NewModel constructs a Model around engine. profile and favs may be nil.
func NewModel(engine *scan.Engine, stateCh chan scan.State, profile Profile, favs Favorites) Model {
	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		engine:    engine,
		state:     engine.Snapshot(),
		stateCh:   stateCh,
		profile:   profile,
		favorites: favs,
		progress:  p,
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
		now:       time.Now,
	}
}

// WithAutoStart makes the screen begin scanning as soon as it mounts.
func (m Model) WithAutoStart(on bool) Model {
	m.autoStart = on
	return m
}

// State returns the last engine snapshot the screen rendered.
func (m Model) State() scan.State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenForState(), m.spinner.Tick}
	if m.autoStart {
		cmds = append(cmds, func() tea.Msg { return startMsg{} })
	}
	return tea.Batch(cmds...)
}

// listenForState returns a Tea command that waits for the next engine snapshot.
func (m Model) listenForState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-m.stateCh)
	}
}

// waitForOutcome returns a Tea command that waits for the run's outcome.
func waitForOutcome(done <-chan scan.Outcome) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(<-done)
	}
}
