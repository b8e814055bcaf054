package script

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/soocke/llama-bot-go/config"
	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/domain/window"
)

// Library resolves template names to loaded templates.
type Library interface {
	Load(names ...string) ([]*vision.Template, error)
}

// Env is what a script needs to run.
type Env struct {
	Agent     *automation.Agent
	Templates Library
	Config    *config.Config
	// Pace is the real length of one scripted millisecond; zero means
	// time.Millisecond.
	Pace time.Duration
}

func (e Env) ms(n int) time.Duration {
	p := e.Pace
	if p <= 0 {
		p = time.Millisecond
	}
	return time.Duration(n) * p
}

func (e Env) wait(ctx context.Context, n int) error {
	return e.Agent.Sleep(ctx, e.ms(n))
}

// at maps a configured offset to a screen point relative to the virtual
// desktop origin.
func (e Env) at(p config.Point) (image.Point, error) {
	origin, err := e.Agent.Origin()
	if err != nil {
		return image.Point{}, err
	}
	return origin.Add(image.Pt(p.X, p.Y)), nil
}

// clickAt moves to p, waits settle, then clicks holding for hold.
func (e Env) clickAt(ctx context.Context, p image.Point, settle, hold int) error {
	return e.Agent.Input().ClickPoint(ctx, p, e.ms(settle), e.ms(hold))
}

func (e Env) click(ctx context.Context, hold int) error {
	return e.Agent.Input().Click(ctx, e.ms(hold))
}

func (e Env) moveTo(p image.Point) error {
	return e.Agent.Input().MoveTo(p)
}

// require finds a window that must already be open.
func (e Env) require(role string, w config.Window) (window.Handle, error) {
	spec := windowSpec(w)
	h, ok := e.Agent.Windows().Find(spec)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", window.ErrNotFound, role, spec)
	}
	return h, nil
}

func windowSpec(w config.Window) window.Spec {
	return window.Spec{Class: w.Class, Title: w.Title}
}

// zero is the no-offset argument for Hit.Center.
var zero image.Point

// offset converts a configured offset into an image.Point.
func offset(p config.Point) image.Point { return image.Pt(p.X, p.Y) }

func loadAll(lib Library, names ...string) (map[string]*vision.Template, error) {
	ts, err := lib.Load(names...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*vision.Template, len(ts))
	for i, t := range ts {
		out[names[i]] = t
	}
	return out, nil
}

func pick(m map[string]*vision.Template, names ...string) []*vision.Template {
	out := make([]*vision.Template, len(names))
	for i, n := range names {
		out[i] = m[n]
	}
	return out
}
