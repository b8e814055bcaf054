package automation

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/soocke/llama-bot-go/domain/action"
	"github.com/soocke/llama-bot-go/domain/capture"
	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/domain/window"
)

// Outcome tells Poll what to do after a handler returns.
type Outcome int

const (
	// Continue sleeps the poll interval and polls again.
	Continue Outcome = iota
	// ContinueNow polls again immediately.
	ContinueNow
	// Done ends the poll successfully.
	Done
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case ContinueNow:
		return "continue-now"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Hit is a cascade match mapped back to screen space.
type Hit struct {
	vision.Hit
	Source image.Rectangle // captured rectangle, virtual-screen coordinates
	Scale  int
}

// Name is the matched template's name.
func (h Hit) Name() string {
	if h.Template == nil {
		return ""
	}
	return h.Template.Name
}

// Center returns the screen point at the center of the match shifted by
// offset: origin + location + size/2 + offset at full scale.
func (h Hit) Center(offset image.Point) image.Point {
	r := h.Result
	if h.Scale == 100 || h.Scale <= 0 {
		return action.Target(h.Source.Min, r.Location, r.Size, offset)
	}
	f := capture.Frame{Source: h.Source, Scale: h.Scale}
	return f.ToScreen(r.Center()).Add(offset)
}

// Handler reacts to a cascade hit.
type Handler func(ctx context.Context, hit Hit) (Outcome, error)

// MissHandler runs when no template cleared the threshold.
type MissHandler func(ctx context.Context) (Outcome, error)

// PollSpec describes one wait-for-landmark loop.
type PollSpec struct {
	Name      string
	Templates []*vision.Template
	OnHit     Handler
	OnMiss    MissHandler
	// BeforeCapture runs at the top of every iteration.
	BeforeCapture func(ctx context.Context) error
	// Interval overrides the agent poll interval when > 0.
	Interval time.Duration
	// NoWatchdog disables the idle and dialog checks for this loop.
	NoWatchdog bool
}

// noFrame marks an iteration whose capture failed.
const noFrame = -2

// Poll runs spec until a handler returns Done, the watchdog aborts, ctx
// ends or a non-recoverable error occurs. The watchdog is reset when the
// poll starts, when it finishes and when a hit differs from the previous
// frame's result. A landmark that keeps matching is not progress.
func (a *Agent) Poll(ctx context.Context, spec PollSpec) error {
	interval := spec.Interval
	if interval <= 0 {
		interval = a.opts.PollInterval
	}
	a.Progress()
	prev := -1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, seen, err := a.pollOnce(ctx, spec)
		if err != nil {
			return err
		}
		if outcome == Done {
			a.Progress()
			return nil
		}
		if seen != noFrame {
			if seen >= 0 && seen != prev {
				a.Progress()
			}
			prev = seen
		}
		if !spec.NoWatchdog {
			if err := a.CheckWatchdog(); err != nil {
				return err
			}
		}
		if outcome == ContinueNow {
			continue
		}
		if err := a.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// pollOnce runs one iteration. seen is the index of the hit template, -1
// on a miss and noFrame when nothing was captured.
func (a *Agent) pollOnce(ctx context.Context, spec PollSpec) (outcome Outcome, seen int, err error) {
	if spec.BeforeCapture != nil {
		if err := spec.BeforeCapture(ctx); err != nil {
			return Continue, noFrame, err
		}
	}
	frame, err := a.capturer.Capture(a.opts.Target, a.opts.ScalePercent)
	if err != nil {
		if capture.IsRecoverable(err) {
			if a.logger != nil {
				a.logger.Warn("capture failed", "poll", spec.Name, "error", err)
			}
			return Continue, noFrame, nil
		}
		return Continue, noFrame, err
	}
	src, scale := frame.Source, frame.Scale
	err = vision.NormalizeInto(&a.snap, frame.Pix, frame.Width, frame.Height, frame.BitsPerPixel, frame.Stride)
	frame.Release()
	if err != nil {
		return Continue, noFrame, err
	}

	d := vision.Evaluate(&a.snap, spec.Templates, a.opts.Threshold)
	for _, o := range a.observers {
		o.Observe(spec.Name, &a.snap, d)
	}
	if !d.Matched {
		if a.logger != nil {
			a.logger.Debug("no match", "poll", spec.Name, "scores", d.Scores)
		}
		if spec.OnMiss == nil {
			return Continue, -1, nil
		}
		outcome, err = spec.OnMiss(ctx)
		return outcome, -1, err
	}

	hit := Hit{Hit: d.Hit, Source: src, Scale: scale}
	if a.logger != nil {
		a.logger.Info("match", "poll", spec.Name, "template", hit.Name(),
			"score", hit.Result.Score, "x", hit.Result.Location.X, "y", hit.Result.Location.Y)
	}
	if spec.OnHit == nil {
		return Done, d.Hit.Index, nil
	}
	outcome, err = spec.OnHit(ctx, hit)
	return outcome, d.Hit.Index, err
}

// WaitWindow polls the window backend until spec appears.
func (a *Agent) WaitWindow(ctx context.Context, spec window.Spec) (window.Handle, error) {
	if a.windows == nil {
		return 0, errors.New("automation: no window manager")
	}
	a.Progress()
	for {
		if h, ok := a.windows.Find(spec); ok {
			if a.logger != nil {
				a.logger.Info("window found", "window", spec.String())
			}
			return h, nil
		}
		if err := a.CheckWatchdog(); err != nil {
			a.logWindows(spec)
			return 0, err
		}
		if err := a.Sleep(ctx, a.opts.PollInterval); err != nil {
			return 0, err
		}
	}
}

// logWindows lists the visible windows after a wait for spec gave up, so a
// renamed launcher or game title shows up in the log.
func (a *Agent) logWindows(spec window.Spec) {
	if a.logger == nil {
		return
	}
	titles, err := a.windows.ListTitles()
	if err != nil {
		a.logger.Debug("list windows", "error", err)
		return
	}
	a.logger.Debug("window not found", "window", spec.String(), "visible", titles)
}

// CloseIfPresent posts a close message to spec's window if it is open.
func (a *Agent) CloseIfPresent(spec window.Spec) bool {
	if a.windows == nil || spec.IsZero() {
		return false
	}
	h, ok := a.windows.Find(spec)
	if !ok {
		return false
	}
	if err := a.windows.PostClose(h); err != nil {
		if a.logger != nil {
			a.logger.Warn("close window", "window", spec.String(), "error", err)
		}
		return false
	}
	if a.logger != nil {
		a.logger.Info("window closed", "window", spec.String())
	}
	return true
}
