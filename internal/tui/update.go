package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		m.help.Width = x.Width
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(x)
		return m, cmd

	case startMsg:
		return m.startScan()

	case stateMsg:
		m.state = m.engine.Snapshot()
		m.syncFavorite()
		return m, m.listenForState()

	case outcomeMsg:
		if m.quitting {
			return m, nil
		}
		// An outcome of an earlier run (reset, then restarted) is still
		// recorded but leaves the current run pending.
		if x.RunID == m.runID {
			m.done, m.runID = nil, ""
		}
		m.applyOutcome(x)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(x)
		return m, cmd
	}

	return m, nil
}
