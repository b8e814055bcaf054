// Package watchdog decides when an automation run has stalled or hit a
// known blocking dialog. It only signals; terminating the target process is
// the caller's job.
package watchdog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/llama-bot-go/domain/window"
)

// DefaultMaxIdle is the liveness timeout used when none is configured.
const DefaultMaxIdle = 120 * time.Second

// State is the progress bookkeeping read every loop iteration.
type State struct {
	LastProgress time.Time
	MaxIdle      time.Duration
}

// ShouldAbort reports whether more than MaxIdle has passed since the last
// progress tick.
func ShouldAbort(s State, now time.Time) bool {
	return now.Sub(s.LastProgress) > s.MaxIdle
}

// Cause says why a run was aborted.
type Cause int

const (
	CauseNone Cause = iota
	CauseIdle
	CauseBlockingDialog
)

func (c Cause) String() string {
	switch c {
	case CauseIdle:
		return "idle timeout"
	case CauseBlockingDialog:
		return "blocking dialog"
	default:
		return "none"
	}
}

// Verdict is the outcome of a Check that requested an abort.
type Verdict struct {
	Cause  Cause
	Idle   time.Duration
	Dialog window.Spec
}

func (v Verdict) String() string {
	if v.Cause == CauseBlockingDialog {
		return fmt.Sprintf("%s %s", v.Cause, v.Dialog)
	}
	return fmt.Sprintf("%s after %s", v.Cause, v.Idle.Round(time.Second))
}

// Watchdog tracks progress for one run. Safe for concurrent use; Reset is
// typically called from script handlers while Check runs in the poll loop.
type Watchdog struct {
	mu      sync.Mutex
	state   State
	started time.Time

	finder  window.Finder
	dialogs []window.Spec
	now     func() time.Time
	logger  *slog.Logger
}

// New constructs a Watchdog. finder may be nil, in which case dialog
// detection is disabled.
func New(logger *slog.Logger, finder window.Finder, maxIdle time.Duration, dialogs []window.Spec) *Watchdog {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	w := &Watchdog{finder: finder, dialogs: dialogs, now: time.Now, logger: logger}
	w.state.MaxIdle = maxIdle
	w.Start()
	return w
}

// SetClock replaces the time source.
func (w *Watchdog) SetClock(now func() time.Time) {
	w.mu.Lock()
	w.now = now
	w.mu.Unlock()
	w.Start()
}

// Start marks the beginning of a run and counts as progress.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.now()
	w.started = t
	w.state.LastProgress = t
}

// Reset records progress.
func (w *Watchdog) Reset() {
	w.mu.Lock()
	w.state.LastProgress = w.now()
	w.mu.Unlock()
}

// State returns a copy of the bookkeeping.
func (w *Watchdog) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Elapsed returns the time since Start.
func (w *Watchdog) Elapsed() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.now().Sub(w.started)
}

// IsBlockingConditionPresent reports the first configured dialog that is
// currently open.
func (w *Watchdog) IsBlockingConditionPresent() (window.Spec, bool) {
	if w.finder == nil {
		return window.Spec{}, false
	}
	for _, d := range w.dialogs {
		if _, ok := w.finder.Find(d); ok {
			return d, true
		}
	}
	return window.Spec{}, false
}

// Check evaluates both abort conditions. A blocking dialog wins over the
// idle timeout.
func (w *Watchdog) Check() (Verdict, bool) {
	if d, ok := w.IsBlockingConditionPresent(); ok {
		return w.verdict(Verdict{Cause: CauseBlockingDialog, Dialog: d}), true
	}
	w.mu.Lock()
	st, now := w.state, w.now()
	w.mu.Unlock()
	if ShouldAbort(st, now) {
		return w.verdict(Verdict{Cause: CauseIdle, Idle: now.Sub(st.LastProgress)}), true
	}
	return Verdict{}, false
}

func (w *Watchdog) verdict(v Verdict) Verdict {
	if w.logger != nil {
		w.logger.Warn("watchdog.abort", "cause", v.Cause.String(), "dialog", v.Dialog.String(), "idle", v.Idle, "elapsed", w.Elapsed())
	}
	return v
}
