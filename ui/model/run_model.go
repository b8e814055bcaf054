package model

import (
	"sync"
	"time"
)

// RunModel tracks the script run shown in the preview window: when it
// started, which step is active and how many steps have completed. The
// zero value is ready to use. Step updates come from the script goroutine
// while the UI tick reads, hence the mutex.
type RunModel struct {
	mu       sync.Mutex
	started  time.Time
	finished time.Time
	step     string
	state    string
	done     int
}

// NewRunModel returns a ready-to-use RunModel.
func NewRunModel() *RunModel { return &RunModel{} }

// Start marks the beginning of a run.
func (m *RunModel) Start(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started, m.finished = now, time.Time{}
	m.step, m.state, m.done = "", "", 0
}

// Step records a step transition.
func (m *RunModel) Step(name, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step, m.state = name, state
	if state == "done" {
		m.done++
	}
}

// Finish marks the end of a run.
func (m *RunModel) Finish(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished.IsZero() {
		m.finished = now
	}
}

// RunValues is a snapshot of the model.
type RunValues struct {
	Step    string
	State   string
	Done    int
	Elapsed time.Duration
	Running bool
}

// Values returns the current state. Elapsed stops growing once finished.
func (m *RunModel) Values(now time.Time) RunValues {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := RunValues{Step: m.step, State: m.state, Done: m.done}
	if m.started.IsZero() {
		return v
	}
	end := now
	if !m.finished.IsZero() {
		end = m.finished
	} else {
		v.Running = true
	}
	v.Elapsed = end.Sub(m.started)
	return v
}
