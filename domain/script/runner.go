// Package script sequences automation steps. A script is an ordered list of
// named steps; a step whose precondition does not hold is skipped, which is
// how scripts express "jump ahead when the game is already running".
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrFinished may be returned by a step to end the script successfully
// without running the remaining steps.
var ErrFinished = errors.New("script: finished")

// State is a step's lifecycle state as seen by listeners.
type State int

const (
	StateStarted State = iota
	StateSkipped
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateSkipped:
		return "skipped"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Listener is called on every step transition.
type Listener func(step string, state State)

// Step is one named unit of a script.
type Step struct {
	Name string
	// When gates entry; nil means always run.
	When func() bool
	Run  func(ctx context.Context) error
}

// Runner executes steps in order.
type Runner struct {
	name   string
	logger *slog.Logger
	steps  []Step

	mu        sync.Mutex
	listeners []Listener
	current   string
}

// NewRunner constructs a Runner for the named script.
func NewRunner(logger *slog.Logger, name string, steps ...Step) *Runner {
	return &Runner{name: name, logger: logger, steps: steps}
}

// Name is the script name.
func (r *Runner) Name() string { return r.name }

// Steps lists the step names in order.
func (r *Runner) Steps() []string {
	out := make([]string, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Name
	}
	return out
}

// AddListener registers l for step transitions.
func (r *Runner) AddListener(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// Current returns the step being run, or "" when idle.
func (r *Runner) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Run executes the script. It stops at the first failing step and returns
// its error wrapped with the step name.
func (r *Runner) Run(ctx context.Context) error {
	defer r.setCurrent("")
	for _, s := range r.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.When != nil && !s.When() {
			r.notify(s.Name, StateSkipped)
			continue
		}
		r.setCurrent(s.Name)
		r.notify(s.Name, StateStarted)
		err := r.runStep(ctx, s)
		if errors.Is(err, ErrFinished) {
			r.notify(s.Name, StateDone)
			if r.logger != nil {
				r.logger.Info("script finished early", "script", r.name, "step", s.Name)
			}
			return nil
		}
		if err != nil {
			r.notify(s.Name, StateFailed)
			return fmt.Errorf("%s/%s: %w", r.name, s.Name, err)
		}
		r.notify(s.Name, StateDone)
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, s Step) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.logger != nil {
				r.logger.Error("step panic", "script", r.name, "step", s.Name, "error", rec, "stack", string(debug.Stack()))
			}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	if s.Run == nil {
		return nil
	}
	return s.Run(ctx)
}

func (r *Runner) setCurrent(name string) {
	r.mu.Lock()
	r.current = name
	r.mu.Unlock()
}

func (r *Runner) notify(step string, st State) {
	if r.logger != nil {
		r.logger.Debug("script step", "script", r.name, "step", step, "state", st.String())
	}
	r.mu.Lock()
	ls := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()
	for _, l := range ls {
		l(step, st)
	}
}
