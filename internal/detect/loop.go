package detect

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// FrameSource hands the loop one already-captured fixed-length frame per
// tick. Frame must return quickly: (nil, false, nil) means no data yet, an
// error counts against the session's tick-error budget. Release frees the
// capture-analysis resource and is called exactly once, from Close.
type FrameSource interface {
	Frame() ([]int16, bool, error)
	Release() error
}

// Observer receives a structured snapshot after each processed tick. It is
// telemetry only; detection decisions never depend on it.
type Observer interface {
	ObserveTick(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) ObserveTick(s Snapshot) { f(s) }

// Loop drives the detector at a fixed cadence for one recording session.
// Ticks are serialized on a single goroutine and are never re-entrant.
type Loop struct {
	cfg      Config
	logger   *slog.Logger
	source   FrameSource
	machine  *Machine
	events   Events
	observer Observer

	errStreak int
	disabled  bool
	phase     atomic.Value // Phase

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// NewLoop builds a loop with a fresh machine for one session. The machine is
// created here so a session cannot start with state carried over from a
// previous recording.
func NewLoop(cfg Config, logger *slog.Logger, source FrameSource, events Events, observer Observer) (*Loop, error) {
	if events == nil {
		events = NoopEvents{}
	}
	machine, err := NewMachine(cfg, events)
	if err != nil {
		return nil, err
	}
	l := &Loop{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		machine:  machine,
		events:   events,
		observer: observer,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	l.phase.Store(machine.Phase())
	return l, nil
}

// Start launches the periodic tick goroutine. Subsequent calls are no-ops.
func (l *Loop) Start() {
	l.runOnce.Do(func() {
		go l.run()
	})
}

// Phase reports the machine's position as of the last completed tick.
func (l *Loop) Phase() Phase {
	return l.phase.Load().(Phase)
}

// Close stops the ticker first, then releases the frame source. It is
// idempotent and only ever interrupts the loop at a tick boundary.
func (l *Loop) Close() error {
	var releaseErr error
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.runOnce.Do(func() { close(l.doneCh) }) // never started
		<-l.doneCh
		if l.source != nil {
			releaseErr = l.source.Release()
		}
	})
	return releaseErr
}

func (l *Loop) run() {
	defer close(l.doneCh)

	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	if l.disabled {
		return
	}

	frame, ok, err := l.source.Frame()
	if err != nil {
		l.errStreak++
		if l.errStreak > l.cfg.ErrorBudget {
			l.disabled = true
			l.logError("detection disabled after repeated tick faults", err)
			l.events.OnDetectionUnavailable(
				"silence auto-stop unavailable for this recording; stop manually when done")
			return
		}
		l.logWarn("tick fault; retrying next tick", err)
		return
	}
	l.errStreak = 0
	if !ok {
		return
	}

	snap := l.machine.Feed(RMS(frame))
	l.phase.Store(snap.Phase)
	if l.observer != nil {
		l.observer.ObserveTick(snap)
	}

	if snap.Phase.terminal() {
		// Stopped: the owner tears the session down. AmbientTooLoud: the
		// recording continues but no further loudness test can matter.
		l.disabled = true
	}
}

func (l *Loop) logWarn(message string, err error) {
	if l.logger == nil {
		return
	}
	l.logger.Warn(message, "error", err.Error(), "streak", l.errStreak)
}

func (l *Loop) logError(message string, err error) {
	if l.logger == nil {
		return
	}
	l.logger.Error(message, "error", err.Error(), "streak", l.errStreak, "budget", l.cfg.ErrorBudget)
}
