package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/script"
)

// Recorder writes one run and its step transitions. Write failures are
// logged, never propagated: history must not stop the bot.
type Recorder struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	runID int64
}

// NewRecorder constructs a Recorder over db.
func NewRecorder(logger *slog.Logger, db *DB) *Recorder {
	return &Recorder{db: db, logger: logger, now: time.Now}
}

// Begin opens a run for mode.
func (r *Recorder) Begin(mode string) error {
	id, err := r.db.StartRun(mode, r.now())
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.runID = id
	r.mu.Unlock()
	return nil
}

// RunID is the current run, 0 before Begin.
func (r *Recorder) RunID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// Listener records step transitions of the current run.
func (r *Recorder) Listener() script.Listener {
	return func(step string, st script.State) {
		id := r.RunID()
		if id == 0 {
			return
		}
		if err := r.db.RecordStep(id, step, st.String(), r.now()); err != nil && r.logger != nil {
			r.logger.Warn("history step", "step", step, "error", err)
		}
	}
}

// End closes the current run with an outcome derived from err.
func (r *Recorder) End(err error) error {
	id := r.RunID()
	if id == 0 {
		return nil
	}
	outcome, reason := Classify(err)
	return r.db.FinishRun(id, outcome, reason, r.now())
}

// Classify maps a run error to an outcome and reason.
func Classify(err error) (Outcome, string) {
	switch {
	case err == nil:
		return OutcomeSucceeded, ""
	case errors.Is(err, automation.ErrWatchdogAbort):
		return OutcomeAborted, err.Error()
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled, err.Error()
	default:
		return OutcomeFailed, err.Error()
	}
}
