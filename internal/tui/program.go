package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/winescan/internal/scan"
)

// Run starts the Bubble Tea TUI program, wiring engine notifications to
// messages. It blocks until the user quits or ctx ends and closes the engine
// on return. profile and favs may be nil.
func Run(ctx context.Context, engine *scan.Engine, profile Profile, favs Favorites, autoStart bool) error {
	stateCh := make(chan scan.State, channelBufferSize)
	unsubscribe := engine.Subscribe(bridge(stateCh))
	defer func() {
		unsubscribe()
		engine.Close()
	}()

	model := NewModel(engine, stateCh, profile, favs).WithAutoStart(autoStart)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Silence external logs (WARN/ERRO) during TUI to avoid corrupting the view.
	prevOut := logrus.StandardLogger().Out
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(prevOut)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Interrupted from outside; the deferred Close cancels any run.
		return nil
	}
	return err
}

// bridge adapts engine notifications into the model's inbound channel. The
// model re-reads the engine snapshot on every message, so a dropped
// notification only delays a repaint.
func bridge(stateCh chan<- scan.State) func(scan.State) {
	return func(s scan.State) {
		select {
		case stateCh <- s:
		default:
			logrus.Debugf("tui: dropped state update (%s %d%%)", s.Phase, s.Progress)
		}
	}
}
