// Package automation drives the capture, match and act loop. An Agent owns
// the per-run resources (capturer, snapshot buffer, input dispatcher,
// watchdog) and exposes the blocking primitives scripts are written in.
package automation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/llama-bot-go/domain/action"
	"github.com/soocke/llama-bot-go/domain/capture"
	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/domain/watchdog"
	"github.com/soocke/llama-bot-go/domain/window"
)

// ErrWatchdogAbort is matched by every AbortError.
var ErrWatchdogAbort = errors.New("automation: watchdog abort")

// AbortError carries the watchdog verdict that ended a run.
type AbortError struct {
	Verdict watchdog.Verdict
	Killed  int // processes terminated in response
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("automation: watchdog abort: %s (terminated %d)", e.Verdict, e.Killed)
}

func (e *AbortError) Is(target error) bool { return target == ErrWatchdogAbort }

// Capturer is the subset of *capture.Capturer the agent needs.
type Capturer interface {
	Capture(t capture.Target, scalePercent int) (*capture.Frame, error)
	Bounds(t capture.Target) (image.Rectangle, error)
}

// Observer sees every analysed snapshot. The snapshot is only valid for
// the duration of the call.
type Observer interface {
	Observe(poll string, snap *vision.Snapshot, d vision.Decision)
}

// AbortHook runs before the agent returns an AbortError, while the last
// snapshot is still intact.
type AbortHook func(reason string, snap *vision.Snapshot)

// Options configure an Agent.
type Options struct {
	Threshold    float64
	ScalePercent int
	PollInterval time.Duration
	ProcessName  string
	Target       capture.Target
}

// Agent runs polls for one script.
type Agent struct {
	opts      Options
	capturer  Capturer
	windows   window.Manager
	input     *action.Dispatcher
	dog       *watchdog.Watchdog
	logger    *slog.Logger
	snap      vision.Snapshot
	observers []Observer
	onAbort   []AbortHook
}

// NewAgent constructs an Agent.
func NewAgent(logger *slog.Logger, opts Options, c Capturer, w window.Manager, in *action.Dispatcher, dog *watchdog.Watchdog) *Agent {
	if opts.Threshold <= 0 {
		opts.Threshold = vision.DefaultThreshold
	}
	if opts.ScalePercent <= 0 {
		opts.ScalePercent = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Agent{opts: opts, capturer: c, windows: w, input: in, dog: dog, logger: logger}
}

// AddObserver registers o for every analysed snapshot.
func (a *Agent) AddObserver(o Observer) { a.observers = append(a.observers, o) }

// OnAbort registers a hook run on watchdog abort.
func (a *Agent) OnAbort(h AbortHook) { a.onAbort = append(a.onAbort, h) }

// Input returns the dispatcher.
func (a *Agent) Input() *action.Dispatcher { return a.input }

// Windows returns the window manager.
func (a *Agent) Windows() window.Manager { return a.windows }

// Watchdog returns the run's watchdog.
func (a *Agent) Watchdog() *watchdog.Watchdog { return a.dog }

// Snapshot is the last analysed frame. It is overwritten by the next poll.
func (a *Agent) Snapshot() *vision.Snapshot { return &a.snap }

// Logger returns the agent logger.
func (a *Agent) Logger() *slog.Logger { return a.logger }

// Origin returns the top-left of the virtual desktop, re-queried on every
// call since monitors may be rearranged.
func (a *Agent) Origin() (image.Point, error) {
	r, err := a.capturer.Bounds(capture.Desktop())
	if err != nil {
		return image.Point{}, err
	}
	return r.Min, nil
}

// Sleep waits d or until ctx is done.
func (a *Agent) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CheckWatchdog evaluates the watchdog and, on abort, terminates the
// target process and returns an AbortError.
func (a *Agent) CheckWatchdog() error {
	if a.dog == nil {
		return nil
	}
	v, abort := a.dog.Check()
	if !abort {
		return nil
	}
	for _, h := range a.onAbort {
		h(v.String(), &a.snap)
	}
	killed := 0
	if a.windows != nil && a.opts.ProcessName != "" {
		n, err := a.windows.TerminateProcess(a.opts.ProcessName)
		if err != nil && a.logger != nil {
			a.logger.Warn("terminate target", "process", a.opts.ProcessName, "error", err)
		}
		killed = n
	}
	return &AbortError{Verdict: v, Killed: killed}
}

// Progress records a state transition for the watchdog.
func (a *Agent) Progress() {
	if a.dog != nil {
		a.dog.Reset()
	}
}
