package script

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/soocke/llama-bot-go/config"
	"github.com/soocke/llama-bot-go/domain/templates"
	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/domain/window"
)

// patchCenter is where a pasted patch's center lands on screen.
var patchCenter = testOrigin.Add(image.Pt(24, 16))

func TestCollect_GameAlreadyRunning(t *testing.T) {
	p := newPatches(t, CollectTemplates...)
	snaps := []*vision.Snapshot{
		p.screen("saveworld"),
		p.screen("news"),
		p.screen("power"),
		p.screen("tier1"),
		p.screen("tier4"),
		p.screen("start"),
		p.screen("team"),
	}
	d := config.DefaultConfig()
	h := newHarness(snaps, p, map[window.Spec]window.Handle{
		windowSpec(d.Launcher): 1,
		windowSpec(d.Game):     2,
		windowSpec(d.Popup):    3,
	})
	r, err := NewCollect(h.env)
	if err != nil {
		t.Fatal(err)
	}
	log := &stepLog{}
	r.AddListener(log.listener)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("collect: %v (%s)", err, log)
	}

	if !strings.Contains(log.String(), "launch-game:skipped") {
		t.Fatalf("launcher steps should be skipped when the game runs: %s", log)
	}
	if len(h.windows.focused) == 0 || h.windows.focused[0] != 2 {
		t.Fatalf("expected game focused, got %v", h.windows.focused)
	}
	if len(h.windows.closed) != 1 || h.windows.closed[0] != 3 {
		t.Fatalf("expected popup closed, got %v", h.windows.closed)
	}
	pts := h.cfg.Collect
	for name, want := range map[string]image.Point{
		"save world": patchCenter,
		"power":      at(pts.Power),
		"tier next":  at(pts.TierNext),
		"tier done":  at(pts.TierDone),
		"park":       at(pts.Park),
		"menu":       at(pts.Menu),
		"leave":      at(pts.Leave),
	} {
		if !h.input.moved(want) {
			t.Errorf("%s: cursor never moved to %v", name, want)
		}
	}
	for _, ev := range []string{"esc-down", "esc-up", "alt-down", "f4-down", "f4-up", "alt-up"} {
		if !h.input.has(ev) {
			t.Errorf("missing input event %s", ev)
		}
	}
	if h.input.down {
		t.Fatalf("button left pressed")
	}
}

func TestCollect_StartsGameFromLauncher(t *testing.T) {
	p := newPatches(t, CollectTemplates...)
	d := config.DefaultConfig()
	h := newHarness([]*vision.Snapshot{p.screen("")}, p, map[window.Spec]window.Handle{
		windowSpec(d.Launcher): 1,
	})
	r, err := NewCollect(h.env)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected to wait for the game window, got %v", err)
	}
	if len(h.windows.focused) == 0 || h.windows.focused[0] != 1 {
		t.Fatalf("expected launcher focused, got %v", h.windows.focused)
	}
	// launcher rect is (100,100)-(900,700)
	if !h.input.moved(image.Pt(868, 668)) || !h.input.has("button-down") {
		t.Fatalf("expected click on launcher start button, moves %v", h.input.moves)
	}
}

func TestCollect_RequiresLauncher(t *testing.T) {
	p := newPatches(t, CollectTemplates...)
	h := newHarness([]*vision.Snapshot{p.screen("")}, p, map[window.Spec]window.Handle{})
	r, err := NewCollect(h.env)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Run(context.Background()); !errors.Is(err, window.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCollect_MissingTemplate(t *testing.T) {
	p := newPatches(t, "saveworld", "abandon", "openbtn")
	h := newHarness([]*vision.Snapshot{p.screen("")}, p, nil)
	_, err := NewCollect(h.env)
	var le *templates.LoadError
	if !errors.As(err, &le) || le.Name != "nextbtn" {
		t.Fatalf("expected load error for nextbtn, got %v", err)
	}
}

func TestOpen_AttackAlreadyShowing(t *testing.T) {
	p := newPatches(t, OpenTemplates...)
	snaps := []*vision.Snapshot{
		p.screen("attack"),
		p.screen("attack"),
		p.screen(""),
		p.screen("back"),
	}
	d := config.DefaultConfig()
	h := newHarness(snaps, p, map[window.Spec]window.Handle{windowSpec(d.Game): 2})
	r, err := NewOpen(h.env)
	if err != nil {
		t.Fatal(err)
	}
	log := &stepLog{}
	r.AddListener(log.listener)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if !strings.Contains(log.String(), "continue:skipped") {
		t.Fatalf("continue should be skipped: %s", log)
	}
	if !h.input.moved(at(h.cfg.Open.Attack)) || !h.input.has("esc-down") {
		t.Fatalf("expected attack clicks and escape, events %v", h.input.events)
	}
	if h.input.down {
		t.Fatalf("button must be released when the attack stage ends")
	}
}

func TestOpen_MiniLlamaThenContinue(t *testing.T) {
	p := newPatches(t, OpenTemplates...)
	snaps := []*vision.Snapshot{
		p.screen("minilama"),
		p.screen("continuebtn"),
		p.screen("back"),
	}
	d := config.DefaultConfig()
	h := newHarness(snaps, p, map[window.Spec]window.Handle{windowSpec(d.Game): 2})
	r, err := NewOpen(h.env)
	if err != nil {
		t.Fatal(err)
	}
	log := &stepLog{}
	r.AddListener(log.listener)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if strings.Contains(log.String(), "skipped") {
		t.Fatalf("no step should be skipped: %s", log)
	}
	pts := h.cfg.Open
	for _, want := range []image.Point{
		patchCenter.Add(image.Pt(pts.MiniLamaHover.X, pts.MiniLamaHover.Y)),
		patchCenter.Add(image.Pt(pts.MiniLamaClick.X, pts.MiniLamaClick.Y)),
		patchCenter,
	} {
		if !h.input.moved(want) {
			t.Errorf("cursor never moved to %v (moves %v)", want, h.input.moves)
		}
	}
	if h.input.down {
		t.Fatalf("button left pressed")
	}
}

func TestOpen_RequiresGame(t *testing.T) {
	p := newPatches(t, OpenTemplates...)
	h := newHarness([]*vision.Snapshot{p.screen("")}, p, nil)
	r, err := NewOpen(h.env)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Run(context.Background()); !errors.Is(err, window.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
