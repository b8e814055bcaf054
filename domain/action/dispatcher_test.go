package action

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"
)

// recordingBackend captures every event as a compact string.
type recordingBackend struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingBackend) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recordingBackend) MoveCursor(x, y int) error {
	r.add(fmt.Sprintf("move %d,%d", x, y))
	return nil
}

func (r *recordingBackend) SendButton(down bool) error {
	if down {
		r.add("down")
	} else {
		r.add("up")
	}
	return nil
}

func (r *recordingBackend) ScanCode(vk VK) uint16 { return uint16(vk) + 0x100 }

func (r *recordingBackend) SendKey(scan uint16, vk VK, extended, down bool) error {
	r.add(fmt.Sprintf("key %#x ext=%v down=%v", scan, extended, down))
	return nil
}

func equalEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestTarget(t *testing.T) {
	p := Target(image.Pt(-1920, 0), image.Pt(100, 40), image.Pt(21, 10), image.Pt(0, 135))
	if p != image.Pt(-1810, 180) {
		t.Fatalf("unexpected target %v", p)
	}
}

func TestClickAt_MovesThenClicks(t *testing.T) {
	rb := &recordingBackend{}
	d := NewDispatcher(nil, rb, Timing{})
	p, err := d.ClickAt(context.Background(), image.Pt(10, 20), image.Pt(50, 50), image.Pt(20, 20), image.Pt(0, 0))
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if p != image.Pt(70, 80) {
		t.Fatalf("unexpected point %v", p)
	}
	equalEvents(t, rb.events, []string{"move 70,80", "down", "up"})
}

func TestClick_ReleasesButtonOnCancel(t *testing.T) {
	rb := &recordingBackend{}
	d := NewDispatcher(nil, rb, DefaultTiming())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Click(ctx, DefaultTiming().ClickHold); err == nil {
		t.Fatalf("expected context error")
	}
	equalEvents(t, rb.events, []string{"down", "up"})
}

func TestPressKey_ExtendedFlags(t *testing.T) {
	rb := &recordingBackend{}
	d := NewDispatcher(nil, rb, Timing{})
	if err := d.PressKey(MustKey("RMENU"), true); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := d.PressKey(MustKey("Esc"), false); err != nil {
		t.Fatalf("press: %v", err)
	}
	equalEvents(t, rb.events, []string{
		"key 0x1a5 ext=true down=true",
		"key 0x11b ext=false down=false",
	})
}

func TestChord_AltF4(t *testing.T) {
	rb := &recordingBackend{}
	d := NewDispatcher(nil, rb, Timing{})
	if err := d.Chord(context.Background(), MustKey("alt"), MustKey("F4"), 0); err != nil {
		t.Fatalf("chord: %v", err)
	}
	equalEvents(t, rb.events, []string{
		"key 0x112 ext=true down=true",
		"key 0x173 ext=false down=true",
		"key 0x173 ext=false down=false",
		"key 0x112 ext=true down=false",
	})
}

// stuckKeyBackend fails every release of one key.
type stuckKeyBackend struct {
	recordingBackend
	stuck VK
}

var errStuck = errors.New("release failed")

func (b *stuckKeyBackend) SendKey(scan uint16, vk VK, extended, down bool) error {
	b.recordingBackend.SendKey(scan, vk, extended, down)
	if vk == b.stuck && !down {
		return errStuck
	}
	return nil
}

func TestChord_ReportsFailedModifierRelease(t *testing.T) {
	b := &stuckKeyBackend{stuck: VKMenu}
	d := NewDispatcher(nil, b, Timing{})
	err := d.Chord(context.Background(), MustKey("alt"), MustKey("F4"), 0)
	if !errors.Is(err, errStuck) {
		t.Fatalf("expected the release error, got %v", err)
	}
	if n := len(b.events); n != 4 || b.events[n-1] != "key 0x112 ext=true down=false" {
		t.Fatalf("expected alt release to be attempted last, got %v", b.events)
	}
}

func TestChord_ReleasesModifierOnCancel(t *testing.T) {
	rb := &recordingBackend{}
	d := NewDispatcher(nil, rb, Timing{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Chord(ctx, MustKey("alt"), MustKey("F4"), time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	equalEvents(t, rb.events, []string{
		"key 0x112 ext=true down=true",
		"key 0x112 ext=true down=false",
	})
}

func TestDoubleClick(t *testing.T) {
	rb := &recordingBackend{}
	d := NewDispatcher(nil, rb, Timing{})
	if err := d.DoubleClick(context.Background(), 0, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	equalEvents(t, rb.events, []string{"down", "up", "down", "up"})
}

func TestParseKey(t *testing.T) {
	cases := []struct {
		in   string
		vk   VK
		ext  bool
		fail bool
	}{
		{in: "F1", vk: 0x70},
		{in: "f12", vk: 0x7B},
		{in: "F24", vk: 0x87},
		{in: "r", vk: 'R'},
		{in: "7", vk: '7'},
		{in: "VK_ESCAPE", vk: VKEscape},
		{in: "numlock", vk: VKNumLock, ext: true},
		{in: "lshift", vk: VKLShift, ext: true},
		{in: "CapsLock", vk: VKCapital, ext: true},
		{in: "space", vk: VKSpace},
		{in: "F25", fail: true},
		{in: "nope", fail: true},
	}
	for _, c := range cases {
		k, err := ParseKey(c.in)
		if c.fail {
			if err == nil {
				t.Fatalf("%s: expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if k.VK != c.vk || k.Extended != c.ext {
			t.Fatalf("%s: got vk=%#x ext=%v want vk=%#x ext=%v", c.in, k.VK, k.Extended, c.vk, c.ext)
		}
	}
}
