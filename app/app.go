package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/soocke/llama-bot-go/debug"
	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/script"
)

const debugLogInterval = 30 * time.Second

// Bot runs one script mode, optionally behind the preview window.
type Bot struct {
	c      *Container
	mode   Mode
	logger *slog.Logger
}

// NewBot prepares a run of mode over c.
func NewBot(c *Container, mode Mode) *Bot {
	return &Bot{c: c, mode: mode, logger: c.Logger}
}

// Run executes the script. With preview enabled it blocks in the Tk event
// loop and runs the script on a separate goroutine.
func (a *Bot) Run(ctx context.Context) error {
	runner, err := a.c.Script(a.mode)
	if err != nil {
		return err
	}
	if a.c.Config.Debug {
		debug.StartGoroutineLogger(ctx, debugLogInterval, a.logger)
		debug.StartMemLogger(ctx, debugLogInterval, a.logger, a.c.Capturer.Stats)
	}
	if a.c.Config.Preview {
		return runPreview(ctx, a, runner)
	}
	return a.execute(ctx, runner)
}

// execute runs runner under the history recorder and dumps the last frame
// on a fatal error.
func (a *Bot) execute(ctx context.Context, runner *script.Runner) error {
	rec := a.c.Recorder
	if rec != nil {
		if err := rec.Begin(runner.Name()); err != nil {
			a.logger.Warn("history begin", "error", err)
		} else {
			runner.AddListener(rec.Listener())
		}
	}
	a.c.Watchdog.Start()
	a.logger.Info("run started", "mode", a.mode, "steps", runner.Steps())

	start := time.Now()
	err := runner.Run(ctx)
	if err != nil && a.c.Dumper != nil && !errors.Is(err, automation.ErrWatchdogAbort) && !errors.Is(err, context.Canceled) {
		a.c.Dumper.Hook("fatal "+runner.Current(), a.c.Agent.Snapshot())
	}
	if rec != nil {
		if herr := rec.End(err); herr != nil {
			a.logger.Warn("history end", "error", herr)
		}
	}
	if err != nil {
		a.logger.Error("run failed", "mode", a.mode, "step", runner.Current(), "elapsed", time.Since(start), "error", err)
		return err
	}
	a.logger.Info("run finished", "mode", a.mode, "elapsed", time.Since(start))
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
