package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/winescan/internal/scan"
)

// handleKey processes key bindings and returns updated model and command.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.done != nil {
			// The program exits before the run's outcome message would arrive.
			// Reset resolves the run synchronously unless the waiting command
			// already took the outcome.
			m.engine.Reset()
			select {
			case o := <-m.done:
				m.applyOutcome(outcomeMsg(o))
			default:
			}
			m.done, m.runID = nil, ""
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Start):
		return m.startScan()

	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
		m.lastErr = ""
		m.state = m.engine.Snapshot()
		m.syncFavorite()
		return m, nil

	case key.Matches(msg, m.keys.Flash):
		m.engine.ToggleFlash()
		m.state = m.engine.Snapshot()
		return m, nil

	case key.Matches(msg, m.keys.Favorite):
		m.toggleFavorite()
		return m, nil
	}

	return m, nil
}

// startScan starts a run. A found result is dismissed first so the start key
// doubles as "scan again".
func (m Model) startScan() (Model, tea.Cmd) {
	if m.engine.Snapshot().Phase == scan.PhaseFound {
		m.engine.Reset()
	}
	done, err := m.engine.Start()
	if err != nil {
		// Busy mid-run is expected when the key is mashed.
		logrus.Debugf("start rejected: %v", err)
		m.state = m.engine.Snapshot()
		return m, nil
	}
	m.done = done
	m.lastErr = ""
	m.state = m.engine.Snapshot()
	m.runID = m.state.RunID
	m.favorite = false
	return m, waitForOutcome(done)
}

// applyOutcome records a finished run in the profile.
func (m *Model) applyOutcome(o outcomeMsg) {
	m.state = m.engine.Snapshot()
	m.syncFavorite()

	if !o.Success || o.Result == nil {
		if m.profile != nil {
			if err := m.profile.RecordCancelled(); err != nil {
				m.fail("failed to record cancelled scan", err)
			}
		}
		return
	}

	m.scans++
	if m.profile != nil {
		if err := m.profile.RecordScan(o.Result.ID, m.now()); err != nil {
			m.fail("failed to record scan", err)
		}
	}
}

// toggleFavorite saves or removes the wine currently shown as found.
func (m *Model) toggleFavorite() {
	if m.favorites == nil || m.state.Phase != scan.PhaseFound || m.state.Result == nil {
		return
	}
	on, err := m.favorites.ToggleFavorite(m.state.Result.ID)
	if err != nil {
		m.fail("failed to update favorites", err)
		return
	}
	m.favorite = on
}

func (m *Model) syncFavorite() {
	if m.favorites == nil || m.state.Result == nil {
		m.favorite = false
		return
	}
	m.favorite = m.favorites.IsFavorite(m.state.Result.ID)
}

func (m *Model) fail(msg string, err error) {
	logrus.WithError(err).Warn(msg)
	m.lastErr = msg + ": " + err.Error()
}
