// Package scan simulates the label recognition pipeline behind the scan
// screen: a staged phase machine and an independent progress ticker that end
// in exactly one outcome per run.
package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/winescan/internal/catalog"
	"github.com/ensigniasec/winescan/internal/validate"
)

// ResultSource supplies the wine a successful run resolves to.
type ResultSource interface {
	PickRandom() catalog.Wine
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithTimings replaces DefaultTimings.
func WithTimings(t Timings) Option {
	return func(e *Engine) { e.timings = t }
}

type run struct {
	id       string
	done     chan Outcome
	resolved bool
}

type listener struct {
	id int
	fn func(State)
}

// Engine owns the scan state of one screen. Construct it when the screen
// mounts and Close it when the screen goes away.
type Engine struct {
	source  ResultSource
	sched   Scheduler
	timings Timings

	mu     sync.Mutex
	state  State
	closed bool
	// gen is bumped on every start and reset; timer callbacks carrying an
	// older gen are ignored.
	gen    uint64
	run    *run
	stage  Timer
	ticker Timer

	listeners  []listener
	nextListen int
	queue      []State
	draining   bool
}

// NewEngine returns an idle engine drawing results from source. It fails with
// ErrInvalidTimings when a delay or the tick interval is not positive or the
// progress step is outside [1, 100].
func NewEngine(source ResultSource, opts ...Option) (*Engine, error) {
	e := &Engine{
		source:  source,
		sched:   RealScheduler(),
		timings: DefaultTimings(),
		state:   idleState(false),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := validate.Struct(e.timings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTimings, err)
	}
	return e, nil
}

// Timings returns the engine's configured timings.
func (e *Engine) Timings() Timings { return e.timings }

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe registers fn to receive every committed state, in commit order.
// Callbacks are serialized and may call back into the engine. The returned
// func removes the subscription.
func (e *Engine) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return func() {}
	}
	e.nextListen++
	id := e.nextListen
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Start begins a run. The returned channel receives exactly one Outcome:
// Success when the run reaches PhaseFound, or a failed outcome when the run
// is reset or the engine closed first. Start returns ErrBusy unless the
// engine is idle.
func (e *Engine) Start() (<-chan Outcome, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if e.state.Phase != PhaseIdle {
		e.mu.Unlock()
		return nil, ErrBusy
	}

	e.gen++
	gen := e.gen
	r := &run{id: uuid.NewString(), done: make(chan Outcome, 1)}
	e.run = r
	logrus.Debugf("scan %s started (total %s)", r.id, e.timings.Total())

	e.setLocked(State{
		Phase:        PhaseScanning,
		StatusText:   PhaseScanning.StatusText(),
		FlashEnabled: e.state.FlashEnabled,
		RunID:        r.id,
	})
	e.ticker = e.sched.Every(e.timings.TickInterval, func() { e.onTick(gen) })
	e.stage = e.sched.AfterFunc(e.timings.DetectDelay, func() { e.onStage(gen) })
	e.mu.Unlock()

	e.flush()
	return r.done, nil
}

// Scan starts a run and waits for its outcome. If ctx ends first the engine
// is reset and the cancelled outcome is returned with ctx.Err(). A found
// result stays on screen until the caller resets.
func (e *Engine) Scan(ctx context.Context) (Outcome, error) {
	done, err := e.Start()
	if err != nil {
		return Outcome{}, err
	}
	select {
	case o := <-done:
		return o, nil
	case <-ctx.Done():
		e.Reset()
		o := <-done
		if o.Success {
			return o, nil
		}
		return o, ctx.Err()
	}
}

// Reset cancels every pending timer and returns to idle. It is the only way
// out of PhaseFound and is safe to call at any time.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()
	e.flush()
}

// ToggleFlash flips the flash indicator. It does not interact with runs.
func (e *Engine) ToggleFlash() {
	e.mu.Lock()
	next := e.state
	next.FlashEnabled = !next.FlashEnabled
	e.setLocked(next)
	e.mu.Unlock()
	e.flush()
}

// Close resets the engine and detaches all subscribers once they have
// received the final idle state, also when Close is called from inside a
// subscriber. Start fails with ErrClosed afterwards. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.resetLocked()
	e.closed = true
	e.mu.Unlock()
	e.flush()
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	if e.state.Progress >= maxProgress {
		e.stopTickerLocked()
		e.mu.Unlock()
		return
	}
	next := e.state
	next.Progress = min(maxProgress, next.Progress+e.timings.ProgressStep)
	e.setLocked(next)
	if next.Progress >= maxProgress {
		e.stopTickerLocked()
	}
	e.mu.Unlock()
	e.flush()
}

func (e *Engine) onStage(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.state.Phase.Active() {
		e.mu.Unlock()
		return
	}
	from := e.state.Phase
	to := from + 1
	next := e.state
	next.Phase = to
	next.StatusText = to.StatusText()

	if to == PhaseFound {
		e.stopTickerLocked()
		e.stage = nil
		wine := e.source.PickRandom()
		found := wine
		next.Progress = maxProgress
		next.Result = &found
		logrus.Debugf("scan %s found %s", next.RunID, wine.ID)
		e.resolveLocked(Outcome{RunID: next.RunID, Result: &wine, Success: true})
	} else {
		e.stage = e.sched.AfterFunc(e.timings.stageDelay(to), func() { e.onStage(gen) })
	}
	e.setLocked(next)
	e.mu.Unlock()
	e.flush()
}

func (e *Engine) resetLocked() {
	e.gen++
	e.stopTickerLocked()
	if e.stage != nil {
		e.stage.Stop()
		e.stage = nil
	}
	if e.run != nil {
		if !e.run.resolved {
			logrus.Debugf("scan %s cancelled in phase %s", e.run.id, e.state.Phase)
		}
		e.resolveLocked(Outcome{RunID: e.run.id})
		e.run = nil
	}
	if e.state.Phase == PhaseIdle && e.state.Progress == 0 {
		return
	}
	e.setLocked(idleState(e.state.FlashEnabled))
}

func (e *Engine) stopTickerLocked() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

// resolveLocked delivers o to the current run unless it already has an outcome.
func (e *Engine) resolveLocked(o Outcome) {
	if e.run == nil || e.run.resolved {
		return
	}
	e.run.resolved = true
	e.run.done <- o
}

// setLocked commits next and queues it for subscribers.
func (e *Engine) setLocked(next State) {
	if next.Phase != e.state.Phase {
		logrus.WithFields(logrus.Fields{
			"run":      next.RunID,
			"from":     e.state.Phase.String(),
			"to":       next.Phase.String(),
			"progress": next.Progress,
		}).Debug("scan phase changed")
	}
	e.state = next
	e.queue = append(e.queue, next)
}

// flush delivers queued states. Only one goroutine delivers at a time; states
// queued while another goroutine (or a subscriber callback) is delivering are
// picked up by that delivery loop, so order is preserved. The loop that drains
// the queue after Close detaches the subscribers.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	for len(e.queue) > 0 {
		batch := e.queue
		e.queue = nil
		subs := make([]listener, len(e.listeners))
		copy(subs, e.listeners)
		e.mu.Unlock()
		for _, s := range batch {
			for _, l := range subs {
				l.fn(s)
			}
		}
		e.mu.Lock()
	}
	if e.closed {
		e.listeners = nil
	}
	e.draining = false
	e.mu.Unlock()
}
