package script

import (
	"image"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/soocke/llama-bot-go/config"
	"github.com/soocke/llama-bot-go/domain/action"
	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/capture"
	"github.com/soocke/llama-bot-go/domain/templates"
	"github.com/soocke/llama-bot-go/domain/vision"
	"github.com/soocke/llama-bot-go/domain/watchdog"
	"github.com/soocke/llama-bot-go/domain/window"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var testOrigin = image.Pt(-1920, 0)

// screens replays snapshots in order and then repeats the last one.
type screens struct {
	mu    sync.Mutex
	snaps []*vision.Snapshot
	calls int
}

func (s *screens) Capture(capture.Target, int) (*capture.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snaps[min(s.calls, len(s.snaps)-1)]
	s.calls++
	pix := make([]byte, snap.Width*snap.Height*4)
	for i := 0; i < snap.Width*snap.Height; i++ {
		copy(pix[i*4:], snap.Pix[i*3:i*3+3])
	}
	return &capture.Frame{
		Pix: pix, Width: snap.Width, Height: snap.Height, Stride: snap.Width * 4, BitsPerPixel: 32,
		Source: image.Rectangle{Min: testOrigin, Max: testOrigin.Add(image.Pt(snap.Width, snap.Height))},
		Scale:  100,
	}, nil
}

func (s *screens) Bounds(capture.Target) (image.Rectangle, error) {
	return image.Rectangle{Min: testOrigin, Max: image.Pt(1920, 1080)}, nil
}

type fakeWindows struct {
	mu      sync.Mutex
	open    map[window.Spec]window.Handle
	closed  []window.Handle
	focused []window.Handle
	killed  []string
	rect    image.Rectangle
}

func (f *fakeWindows) Find(s window.Spec) (window.Handle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.open[s]
	return h, ok
}

func (f *fakeWindows) Rect(window.Handle) (image.Rectangle, error) { return f.rect, nil }

func (f *fakeWindows) BringToForeground(h window.Handle) error {
	f.mu.Lock()
	f.focused = append(f.focused, h)
	f.mu.Unlock()
	return nil
}

func (f *fakeWindows) PostClose(h window.Handle) error {
	f.mu.Lock()
	f.closed = append(f.closed, h)
	f.mu.Unlock()
	return nil
}

func (f *fakeWindows) TerminateProcess(name string) (int, error) {
	f.mu.Lock()
	f.killed = append(f.killed, name)
	f.mu.Unlock()
	return 1, nil
}

func (f *fakeWindows) ListTitles() ([]string, error) { return nil, nil }

// recorder is an action.Backend that keeps every event as a string.
type recorder struct {
	mu     sync.Mutex
	events []string
	moves  []image.Point
	down   bool
}

func (r *recorder) MoveCursor(x, y int) error {
	r.mu.Lock()
	r.moves = append(r.moves, image.Pt(x, y))
	r.mu.Unlock()
	return nil
}

func (r *recorder) SendButton(down bool) error {
	r.mu.Lock()
	r.down = down
	if down {
		r.events = append(r.events, "button-down")
	} else {
		r.events = append(r.events, "button-up")
	}
	r.mu.Unlock()
	return nil
}

func (r *recorder) ScanCode(vk action.VK) uint16 { return uint16(vk) }

func (r *recorder) SendKey(_ uint16, vk action.VK, _, down bool) error {
	r.mu.Lock()
	state := "up"
	if down {
		state = "down"
	}
	r.events = append(r.events, vkName(vk)+"-"+state)
	r.mu.Unlock()
	return nil
}

func vkName(vk action.VK) string {
	switch vk {
	case action.VKEscape:
		return "esc"
	case action.VKMenu:
		return "alt"
	case action.VKF1 + 3:
		return "f4"
	default:
		return "key"
	}
}

func (r *recorder) moved(p image.Point) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.moves {
		if m == p {
			return true
		}
	}
	return false
}

func (r *recorder) has(ev string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == ev {
			return true
		}
	}
	return false
}

// patches hands out distinct noise templates and builds screens that show
// one of them.
type patches struct {
	t     *testing.T
	tmpl  map[string]*vision.Template
	src   map[string]*vision.Snapshot
	seed  int64
	where image.Point
}

func newPatches(t *testing.T, names ...string) *patches {
	p := &patches{t: t, tmpl: map[string]*vision.Template{}, src: map[string]*vision.Snapshot{}, seed: 100, where: image.Pt(20, 12)}
	for _, n := range names {
		src := p.noise(8, 8)
		tmpl, err := vision.TemplateFromSnapshot(n, src)
		if err != nil {
			t.Fatal(err)
		}
		p.tmpl[n] = tmpl
		p.src[n] = src
	}
	return p
}

func (p *patches) noise(w, h int) *vision.Snapshot {
	p.seed++
	s := &vision.Snapshot{Width: w, Height: h, Pix: make([]byte, w*h*3)}
	rand.New(rand.NewSource(p.seed)).Read(s.Pix)
	return s
}

// screen returns a fresh noise screen with name pasted at p.where, or a
// plain one when name is empty.
func (p *patches) screen(name string) *vision.Snapshot {
	s := p.noise(48, 32)
	if name == "" {
		return s
	}
	src := p.src[name]
	for y := 0; y < src.Height; y++ {
		copy(s.Pix[(p.where.Y+y)*s.Stride()+p.where.X*3:], src.Pix[y*src.Stride():(y+1)*src.Stride()])
	}
	return s
}

// Load implements Library.
func (p *patches) Load(names ...string) ([]*vision.Template, error) {
	out := make([]*vision.Template, len(names))
	for i, n := range names {
		t, ok := p.tmpl[n]
		if !ok {
			return nil, &templates.LoadError{Name: n, Err: templates.ErrUnknownTemplate}
		}
		out[i] = t
	}
	return out, nil
}

type harness struct {
	env     Env
	windows *fakeWindows
	input   *recorder
	cfg     *config.Config
}

func newHarness(snaps []*vision.Snapshot, lib Library, windows map[window.Spec]window.Handle) *harness {
	cfg := config.DefaultConfig()
	fw := &fakeWindows{open: windows, rect: image.Rect(100, 100, 900, 700)}
	in := &recorder{}
	dog := watchdog.New(nil, fw, time.Minute, nil)
	agent := automation.NewAgent(discardLogger, automation.Options{PollInterval: time.Millisecond, ProcessName: cfg.ProcessName},
		&screens{snaps: snaps}, fw, action.NewDispatcher(discardLogger, in, action.Timing{}), dog)
	return &harness{
		env:     Env{Agent: agent, Templates: lib, Config: cfg, Pace: time.Microsecond},
		windows: fw,
		input:   in,
		cfg:     cfg,
	}
}

func at(p config.Point) image.Point { return testOrigin.Add(image.Pt(p.X, p.Y)) }
